package extauth

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// LDAPConfig holds LDAP connection and search parameters.
// The display attribute is what sales leads carry as their Owner.
type LDAPConfig struct {
	URL          string
	BaseDN       string
	BindDN       string
	BindPassword string
	UserFilter   string
	UserAttr     string
	DisplayAttr  string
	StartTLS     bool
	SkipVerify   bool
	AdminGroups  []string
	Timeout      time.Duration
}

const memberOfAttr = "memberOf"

// LDAPAuthenticator performs bind-based LDAP authentication.
type LDAPAuthenticator struct {
	cfg LDAPConfig
}

func NewLDAPAuthenticator(cfg LDAPConfig) *LDAPAuthenticator {
	if cfg.UserAttr == "" {
		cfg.UserAttr = "uid"
	}
	if cfg.DisplayAttr == "" {
		cfg.DisplayAttr = "cn"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &LDAPAuthenticator{cfg: cfg}
}

// Authenticate verifies the username/password against LDAP and returns identity info.
func (la *LDAPAuthenticator) Authenticate(username, password string) (*IdentityResult, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("username and password required")
	}

	conn, err := la.connect()
	if err != nil {
		return nil, fmt.Errorf("ldap connect: %w", err)
	}
	defer conn.Close()

	// Service account bind to search for the user
	if la.cfg.BindDN != "" {
		if err := conn.Bind(la.cfg.BindDN, la.cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("ldap service bind: %w", err)
		}
	}

	userDN, attrs, groups, err := la.searchUser(conn, username)
	if err != nil {
		return nil, err
	}

	// Bind as the user to verify their password
	if err := conn.Bind(userDN, password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	subject := username
	if v, ok := attrs[la.cfg.UserAttr]; ok && v != "" {
		subject = v
	}
	displayName := subject
	if v, ok := attrs[la.cfg.DisplayAttr]; ok && v != "" {
		displayName = v
	}

	return &IdentityResult{
		Subject:     subject,
		DisplayName: displayName,
		Email:       attrs["mail"],
		IsAdmin:     inAdminGroup(groups, la.cfg.AdminGroups),
	}, nil
}

// inAdminGroup matches either full group DNs or their leading CN value.
func inAdminGroup(memberOf, adminGroups []string) bool {
	for _, g := range memberOf {
		cn := g
		if dn, err := ldap.ParseDN(g); err == nil && len(dn.RDNs) > 0 && len(dn.RDNs[0].Attributes) > 0 {
			cn = dn.RDNs[0].Attributes[0].Value
		}
		for _, want := range adminGroups {
			if strings.EqualFold(g, want) || strings.EqualFold(cn, want) {
				return true
			}
		}
	}
	return false
}

func (la *LDAPAuthenticator) connect() (*ldap.Conn, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: la.cfg.SkipVerify}

	if strings.HasPrefix(la.cfg.URL, "ldaps://") {
		conn, err := ldap.DialURL(la.cfg.URL, ldap.DialWithTLSConfig(tlsCfg))
		if err != nil {
			return nil, err
		}
		conn.SetTimeout(la.cfg.Timeout)
		return conn, nil
	}

	conn, err := ldap.DialURL(la.cfg.URL)
	if err != nil {
		return nil, err
	}
	conn.SetTimeout(la.cfg.Timeout)

	if la.cfg.StartTLS {
		if err := conn.StartTLS(tlsCfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}
	return conn, nil
}

func (la *LDAPAuthenticator) searchUser(conn *ldap.Conn, username string) (string, map[string]string, []string, error) {
	filter := UserFilter(la.cfg.UserFilter, username)

	searchAttrs := []string{"dn", la.cfg.UserAttr, la.cfg.DisplayAttr, "mail", memberOfAttr}

	result, err := conn.Search(ldap.NewSearchRequest(
		la.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1, // size limit
		int(la.cfg.Timeout/time.Second),
		false,
		filter,
		searchAttrs,
		nil,
	))
	if err != nil {
		return "", nil, nil, fmt.Errorf("ldap search: %w", err)
	}
	if len(result.Entries) == 0 {
		return "", nil, nil, fmt.Errorf("user not found")
	}

	entry := result.Entries[0]
	attrs := make(map[string]string, len(searchAttrs))
	for _, a := range searchAttrs {
		if a != "dn" && a != memberOfAttr {
			attrs[a] = entry.GetAttributeValue(a)
		}
	}
	return entry.DN, attrs, entry.GetAttributeValues(memberOfAttr), nil
}

// UserFilter substitutes the escaped username into the configured filter.
func UserFilter(template, username string) string {
	if template == "" {
		template = "(uid={{.Username}})"
	}
	return strings.ReplaceAll(template, "{{.Username}}", ldap.EscapeFilter(username))
}
