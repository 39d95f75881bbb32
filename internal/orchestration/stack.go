package orchestration

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
)

// ContainerListCommand lists every container on the instance, one JSON
// object per line.
const ContainerListCommand = "docker ps --all --format '{{json .}}'"

// launchedMarker is echoed by the launch command once tmux accepted it.
const launchedMarker = "launched"

// LaunchCommand starts launch inside a detached tmux session so the stack
// outlives the SSH connection. An existing session is left alone, which
// makes the command safe to repeat.
func LaunchCommand(session, launch string) string {
	quoted := shellQuote(session)
	return fmt.Sprintf("tmux has-session -t %s 2>/dev/null || tmux new-session -d -s %s %s; echo %s",
		quoted, quoted, shellQuote(launch), launchedMarker)
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Container is one entry of the container listing.
type Container struct {
	ID    string `json:"ID"`
	Names string `json:"Names"`
	Image string `json:"Image"`
	State string `json:"State"`
	// Status is the human readable form, e.g. "Up 5 minutes".
	Status string `json:"Status"`
}

// Running reports whether the container is up. Older docker releases do
// not report State, so Status is consulted as a fallback.
func (c Container) Running() bool {
	if c.State != "" {
		return strings.EqualFold(c.State, "running")
	}
	return strings.HasPrefix(c.Status, "Up")
}

// names splits the comma separated Names field and drops API-style
// leading slashes.
func (c Container) names() []string {
	var out []string
	for _, n := range strings.Split(c.Names, ",") {
		n = strings.TrimPrefix(strings.TrimSpace(n), "/")
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Matches reports whether the container carries the expected name, either
// exactly or as a compose-style suffix ("-name" or "_name"). A trailing
// compose replica index such as "-1" is ignored.
func (c Container) Matches(expected string) bool {
	for _, n := range c.names() {
		if nameMatches(n, expected) || nameMatches(trimReplicaIndex(n), expected) {
			return true
		}
	}
	return false
}

func nameMatches(name, expected string) bool {
	return name == expected || strings.HasSuffix(name, "-"+expected) || strings.HasSuffix(name, "_"+expected)
}

// trimReplicaIndex strips a "-<digits>" or "_<digits>" suffix.
func trimReplicaIndex(name string) string {
	i := strings.LastIndexAny(name, "-_")
	if i <= 0 || i == len(name)-1 {
		return name
	}
	for _, r := range name[i+1:] {
		if r < '0' || r > '9' {
			return name
		}
	}
	return name[:i]
}

// ParseContainers decodes a container listing. It accepts a JSON array as
// well as one JSON object per line.
func ParseContainers(output string) ([]Container, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var containers []Container
		if err := json.Unmarshal([]byte(trimmed), &containers); err != nil {
			return nil, fmt.Errorf("failed to parse container list: %w", err)
		}
		return containers, nil
	}

	var containers []Container
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var c Container
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return nil, fmt.Errorf("failed to parse container list line %d: %w", line, err)
		}
		containers = append(containers, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read container list: %w", err)
	}
	return containers, nil
}

// MissingContainers returns the expected names that have no running
// container, in the order given.
func MissingContainers(containers []Container, expected []string) []string {
	var missing []string
	for _, name := range expected {
		found := false
		for _, c := range containers {
			if c.Matches(name) && c.Running() {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}
