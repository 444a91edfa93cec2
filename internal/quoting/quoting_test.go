package quoting

import (
	"testing"

	"github.com/bawdo/gosqlplus/internal/testutil"
)

func TestIdent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		engine string
		input  string
		want   string
	}{
		{"postgres", "users", `"users"`},
		{"postgres", "", `""`},
		{"sqlite", "Users", `"Users"`},
		{"sqlite", `us"ers`, `"us""ers"`},
		{"mysql", "users", "`users`"},
		{"mysql", "my table", "`my table`"},
		{"mysql", "a`b", "`a``b`"},
		// A double quote is ordinary text inside backticks.
		{"mysql", `a"b`, "`a\"b`"},
		{"postgres", `"Mixed"`, `"Mixed"`},
		{"mysql", "`t`", "`t`"},
		{"postgres", `"`, `""""`},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, Ident(tt.engine, tt.input), tt.want)
	}
}

func TestQualified(t *testing.T) {
	t.Parallel()
	tests := []struct {
		engine string
		input  string
		want   string
	}{
		{"postgres", "public.users", `"public"."users"`},
		{"mysql", "shop.orders", "`shop`.`orders`"},
		{"sqlite", "t1", `"t1"`},
		{"postgres", `"My Schema".t`, `"My Schema"."t"`},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, Qualified(tt.engine, tt.input), tt.want)
	}
}
