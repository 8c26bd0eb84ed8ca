package domain

// OAuth providers that expose GET /auth/{provider}-login-url.
var Providers = []string{
	"google",
	"facebook",
	"github",
}

// ValidProvider returns true if p is a supported OAuth provider.
func ValidProvider(p string) bool {
	for _, v := range Providers {
		if v == p {
			return true
		}
	}
	return false
}
