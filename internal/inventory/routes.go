package inventory

// backendRoutes are the inventory backend's routes. Metrics are labelled
// with these only, so model-chosen endpoints cannot grow the series set.
var backendRoutes = map[string]bool{
	"/api/placement":                true,
	"/api/search":                   true,
	"/api/retrieve":                 true,
	"/api/place":                    true,
	"/api/waste/identify":           true,
	"/api/waste/return-plan":        true,
	"/api/waste/complete-undocking": true,
	"/api/simulate/day":             true,
	"/api/import/items":             true,
	"/api/import/containers":        true,
	"/api/export/arrangement":       true,
	"/api/logs":                     true,
}

// otherRoute labels every endpoint outside backendRoutes.
const otherRoute = "other"

// routeLabel maps endpoint to a bounded metric label: the normalized route
// when the backend serves it, otherwise "other".
func routeLabel(endpoint string) string {
	if e := normalizeEndpoint(endpoint); backendRoutes[e] {
		return e
	}
	return otherRoute
}
