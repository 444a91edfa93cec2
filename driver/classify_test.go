package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sql  string
		want Kind
	}{
		{"select * from t", KindQuery},
		{"SELECT 1", KindQuery},
		{"(select 1) union (select 2)", KindQuery},
		{"/* hint */ select 1", KindQuery},
		{"show tables", KindQuery},
		{"with x as (select 1) select * from x", KindQuery},
		{"values (1), (2)", KindQuery},
		{"explain select 1", KindQuery},
		{"pragma table_info(t)", KindQuery},
		{"insert into t values (1)", KindDML},
		{"update t set a = 1", KindDML},
		{"delete from t", KindDML},
		{"replace into t values (1)", KindDML},
		{"merge into t using s on (t.id = s.id) when matched then delete", KindDML},
		{"commit", KindDCL},
		{"rollback", KindDCL},
		{"begin", KindUnknown},
		{"start transaction", KindUnknown},
		{"commit work", KindDCL},
		{"grant select on t to bob", KindDCL},
		{"revoke select on t from bob", KindDCL},
		{"savepoint a", KindDCL},
		{"create table t (id int)", KindUnknown},
		{"drop table t", KindUnknown},
		{"begin\n  null;\nend;", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.sql), "Classify(%q)", tt.sql)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "query", KindQuery.String())
	assert.Equal(t, "dml", KindDML.String())
	assert.Equal(t, "dcl", KindDCL.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
