package naming

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefix is prepended to every provider resource name.
const Prefix = "subnet"

// tokenLength is the number of hex characters in a deployment token.
const tokenLength = 8

// DeploymentToken returns a fresh lowercase hex token.
func DeploymentToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLength]
}

func Server(token string) string {
	return fmt.Sprintf("%s-%s", Prefix, token)
}

func SSHKey(token string) string {
	return fmt.Sprintf("%s-%s-ssh", Prefix, token)
}

// TokenFromServer extracts the deployment token from a server name built by
// Server. It reports false for names this package did not produce.
func TokenFromServer(name string) (string, bool) {
	token, ok := strings.CutPrefix(name, Prefix+"-")
	if !ok || len(token) != tokenLength || strings.Contains(token, "-") {
		return "", false
	}
	return token, true
}
