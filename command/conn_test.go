package command

import (
	"testing"

	"github.com/bawdo/gosqlplus/internal/testutil"
	"github.com/cockroachdb/errors"
)

func TestParseConnectionStringFull(t *testing.T) {
	t.Parallel()
	d, err := ParseConnectionString("sys/pwd@host:9999")
	testutil.AssertNoError(t, err)
	testutil.AssertPtr(t, d.Username, "sys")
	testutil.AssertPtr(t, d.Password, "pwd")
	testutil.AssertPtr(t, d.Host, "host")
	testutil.AssertPtr(t, d.Port, uint16(9999))
	testutil.AssertEqual(t, d.AnyValid(), true)
}

func TestParseConnectionStringEmpty(t *testing.T) {
	t.Parallel()
	d, err := ParseConnectionString("")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, d.AnyValid(), false)
}

func TestParseConnectionStringEmptySegmentsAreNil(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"/", "@", ":", "/@:", "sys/@:", "@:"} {
		d, err := ParseConnectionString(s)
		testutil.AssertNoError(t, err)
		testutil.AssertNil(t, d.Password)
		testutil.AssertNil(t, d.Host)
		testutil.AssertNil(t, d.Port)
	}
}

func TestParseConnectionStringPartial(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in                   string
		user, password, host string
		port                 uint16
	}{
		{in: "sys", user: "sys"},
		{in: "sys/", user: "sys"},
		{in: "sys@db", user: "sys", host: "db"},
		{in: "/secret", password: "secret"},
		{in: "@db:1688", host: "db", port: 1688},
		{in: "db:5432", host: "db", port: 5432},
	}
	for _, tc := range cases {
		d, err := ParseConnectionString(tc.in)
		testutil.AssertNoError(t, err)
		checkField(t, tc.in, d.Username, tc.user)
		checkField(t, tc.in, d.Password, tc.password)
		checkField(t, tc.in, d.Host, tc.host)
		if tc.port == 0 {
			testutil.AssertNil(t, d.Port)
		} else {
			testutil.AssertPtr(t, d.Port, tc.port)
		}
	}
}

func checkField(t *testing.T, in string, got *string, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Errorf("%q: expected <nil>, got %q", in, *got)
		}
		return
	}
	if got == nil || *got != want {
		t.Errorf("%q: expected %q, got %v", in, want, show(got))
	}
}

func TestParseConnectionStringColonAlwaysMovesToPort(t *testing.T) {
	t.Parallel()
	// A second ':' re-closes the host with the previous port segment.
	d, err := ParseConnectionString("a:b:1")
	testutil.AssertNoError(t, err)
	testutil.AssertPtr(t, d.Host, "b")
	testutil.AssertPtr(t, d.Port, uint16(1))
}

func TestParseConnectionStringErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in    string
		kind  ConnErrorKind
		state State
	}{
		{in: "sys/pwd@host:9999;", kind: ConnErrPort},
		{in: "sys/pwd@host:70000", kind: ConnErrPort},
		{in: "sys/pwd@host:-1", kind: ConnErrPort},
		{in: "sys/pwd/x", kind: ConnErrExpected, state: StatePassword},
		{in: "sys@host/x", kind: ConnErrExpected, state: StateHost},
		{in: "sys@host@x", kind: ConnErrExpected, state: StateHost},
		{in: "h:1/x", kind: ConnErrExpected, state: StatePort},
		{in: "h:1@x", kind: ConnErrExpected, state: StatePort},
	}
	for _, tc := range cases {
		_, err := ParseConnectionString(tc.in)
		var ce *ConnParsingError
		if !errors.As(err, &ce) {
			t.Errorf("%q: expected ConnParsingError, got %v", tc.in, err)
			continue
		}
		testutil.AssertEqual(t, ce.Kind, tc.kind)
		if tc.kind == ConnErrExpected {
			testutil.AssertEqual(t, ce.State, tc.state)
		}
	}
}

func TestParseConnectionStringSentinelIsNotLegalInput(t *testing.T) {
	t.Parallel()
	_, err := ParseConnectionString("sys\x01tail")
	var ce *ConnParsingError
	if !errors.As(err, &ce) || ce.Kind != ConnErrInvalid {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestDescriptorOr(t *testing.T) {
	t.Parallel()
	d, err := ParseConnectionString("sys@db")
	testutil.AssertNoError(t, err)
	fb, err := ParseConnectionString("other/pwd@fallback:1700")
	testutil.AssertNoError(t, err)

	got := d.Or(fb)
	testutil.AssertPtr(t, got.Username, "sys")
	testutil.AssertPtr(t, got.Host, "db")
	testutil.AssertPtr(t, got.Password, "pwd")
	testutil.AssertPtr(t, got.Port, uint16(1700))
}
