package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPMetricsMiddleware instruments every request with the request counter
// and duration histogram, labeled by method, normalized route and status.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		ObserveHTTPRequest(r.Method, routeLabel(r.URL.Path), strconv.Itoa(sw.status), time.Since(start))
	})
}

// routeLabel collapses path parameters so label cardinality stays bounded.
func routeLabel(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segs) == 2 && segs[0] == "work-sheets":
		return "/work-sheets/{id}"
	case len(segs) == 2 && segs[0] == "employee-details":
		return "/employee-details/{id}"
	case len(segs) == 3 && segs[0] == "payroll":
		return "/payroll/{id}/" + segs[2]
	case len(segs) == 3 && segs[0] == "users":
		return "/users/{id}/" + segs[2]
	}
	return path
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
