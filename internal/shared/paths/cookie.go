package paths

import "strings"

// BrowserIndexRoute names the route used to probe the application mount point.
const BrowserIndexRoute = "browser.index"

// BrowserIndexPath is the path of BrowserIndexRoute when mounted at the root.
const BrowserIndexPath = "/browser/"

// URLResolver builds URLs for named routes.
type URLResolver interface {
	URLFor(name string) (string, error)
}

// CookiePath returns the path cookies should be scoped to. Deployments
// mounted below a URL prefix get that prefix, everything else gets "/".
func CookiePath(urls URLResolver) (string, error) {
	root, err := urls.URLFor(BrowserIndexRoute)
	if err != nil {
		return "", err
	}

	if root == BrowserIndexPath {
		return "/", nil
	}
	return strings.ReplaceAll(root, BrowserIndexPath, ""), nil
}
