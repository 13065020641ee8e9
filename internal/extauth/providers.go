package extauth

// Provider describes an available authentication method.
type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // "token", "ldap", "standard"
}

// IdentityResult is returned after successful external authentication.
type IdentityResult struct {
	Subject     string
	DisplayName string
	Email       string
	IsAdmin     bool
}

// Providers lists the login methods the server accepts.
func Providers(ldapEnabled bool) []Provider {
	out := []Provider{
		{ID: "token", Name: "API token", Type: "token"},
		{ID: "standard", Name: "Username and password", Type: "standard"},
	}
	if ldapEnabled {
		out = append(out, Provider{ID: "ldap", Name: "LDAP", Type: "ldap"})
	}
	return out
}
