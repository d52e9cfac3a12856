package domain

// RequestContext carries per-request identity resolved by middleware.
type RequestContext struct {
	IP      string
	TraceId string
	User    *User
	Admin   *AdminPrincipal
}
