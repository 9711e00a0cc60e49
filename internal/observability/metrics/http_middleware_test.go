package metrics

import "testing"

func TestRouteLabelCollapsesIDs(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/work-sheets/abc123", "/work-sheets/{id}"},
		{"/employee-details/42", "/employee-details/{id}"},
		{"/payroll/77/pay", "/payroll/{id}/pay"},
		{"/users/9/fire", "/users/{id}/fire"},
		{"/users/9/make-hr", "/users/{id}/make-hr"},
		{"/users/9/salary", "/users/{id}/salary"},
		{"/users/9/verify", "/users/{id}/verify"},
		{"/work-sheets", "/work-sheets"},
		{"/login", "/login"},
		{"/", "/"},
	}
	for _, tc := range cases {
		if got := routeLabel(tc.path); got != tc.want {
			t.Fatalf("routeLabel(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
