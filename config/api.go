package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Storefront endpoints are public; only broadcast endpoints need credentials.
	return []string{
		"/api/products",
		"/api/products/:id",
		"/api/categories",
		"/api/images/thumbnail",
		"/api/onedrive/resolve",
		"/api/subscribe",
	}
}
