// Package artifacts renders the per-student handout material: a
// self-contained SSH connection script, a plain-text connection document,
// a credential email body, and a CSV export of workflow results. Nothing
// here talks to the network; callers decide where the output goes.
package artifacts

import (
	"fmt"
	"strings"
)

// ScriptFilename is the name students see for the connection script.
const ScriptFilename = "ec2-ssh.sh"

const scriptTemplate = `#!/bin/bash
# EC2 SSH Connection Script
# Student:  %[1]s
# Host:     %[2]s
# Instance: %[3]s
#
# Usage: bash ` + ScriptFilename + `

HOST="%[2]s"
USER="%[5]s"
TMP_KEY="/tmp/canvastools-ssh-$$"

PRIVATE_KEY='%[4]s'

# Clean up stale key files from previous runs
for stale in /tmp/canvastools-ssh-*; do
    [ -f "$stale" ] && rm -f "$stale"
done

# Write key to temp file
printf '%%s\n' "$PRIVATE_KEY" > "$TMP_KEY"
chmod 600 "$TMP_KEY"

# Remove temp file on exit
trap 'rm -f "$TMP_KEY"' EXIT INT TERM

# Connect
ssh -o StrictHostKeyChecking=no -i "$TMP_KEY" "$USER@$HOST"
`

// ScriptParams identifies the instance a connection script targets.
type ScriptParams struct {
	Account    string
	PublicIP   string
	InstanceID string
	PrivateKey string
	SSHUser    string
}

// BuildSSHScript renders a self-contained bash script that connects to a
// student's instance. The embedded key is written to a process-unique temp
// file with owner-only permissions and removed again on exit or interrupt.
// The key's trailing newline is stripped so the quoted literal stays
// well-formed.
func BuildSSHScript(p ScriptParams) string {
	user := p.SSHUser
	if user == "" {
		user = "ubuntu"
	}
	return fmt.Sprintf(scriptTemplate,
		p.Account,
		p.PublicIP,
		p.InstanceID,
		strings.TrimRight(p.PrivateKey, "\n"),
		user,
	)
}
