package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shanep/canvas-tools/internal/artifacts"
	"github.com/shanep/canvas-tools/internal/config"
	"github.com/shanep/canvas-tools/internal/provisioning"
)

// resultsCSVName is the workflow summary written at the root of --out.
const resultsCSVName = "results.csv"

// writeResultsCSV writes the workflow summary into dir.
func writeResultsCSV(dir string, results []provisioning.Result) error {
	f, err := os.Create(filepath.Join(dir, resultsCSVName))
	if err != nil {
		return fmt.Errorf("failed to create results csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	return artifacts.WriteResultsCSV(f, results)
}

// writeLaunchArtifacts writes per-student connection material for every
// launched instance: a directory per account holding the SSH script
// (owner-executable, since it embeds a private key) and the connection
// document, plus the results CSV at the root.
func writeLaunchArtifacts(dir, sshUser string, results []provisioning.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeResultsCSV(dir, results); err != nil {
		return err
	}

	for _, r := range results {
		if r.Status != provisioning.StatusLaunched {
			continue
		}

		studentDir := filepath.Join(dir, r.Account)
		if err := os.MkdirAll(studentDir, 0o755); err != nil {
			return fmt.Errorf("failed to create student directory: %w", err)
		}

		script := artifacts.BuildSSHScript(artifacts.ScriptParams{
			Account:    r.Account,
			PublicIP:   r.PublicIP,
			InstanceID: r.InstanceID,
			PrivateKey: r.PrivateKey,
			SSHUser:    sshUser,
		})
		if err := os.WriteFile(filepath.Join(studentDir, artifacts.ScriptFilename), []byte(script), 0o700); err != nil {
			return fmt.Errorf("failed to write connection script: %w", err)
		}

		doc := artifacts.BuildConnectionDoc(artifacts.DocParams{
			Account:    r.Account,
			PublicIP:   r.PublicIP,
			InstanceID: r.InstanceID,
			SSHUser:    sshUser,
		})
		if err := os.WriteFile(filepath.Join(studentDir, "connection.txt"), []byte(doc), 0o644); err != nil {
			return fmt.Errorf("failed to write connection doc: %w", err)
		}
	}
	return nil
}

// writeCredentialArtifacts writes the results CSV plus a credential email
// body (text and HTML) for every result carrying a fresh password.
func writeCredentialArtifacts(dir string, cfg *config.Config, signInURL string, results []provisioning.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeResultsCSV(dir, results); err != nil {
		return err
	}

	emailDir := filepath.Join(dir, "emails")
	wroteAny := false

	for _, r := range results {
		if r.Password == "" {
			continue
		}
		if !wroteAny {
			if err := os.MkdirAll(emailDir, 0o755); err != nil {
				return fmt.Errorf("failed to create email directory: %w", err)
			}
			wroteAny = true
		}

		params := artifacts.EmailParams{
			SignInURL: signInURL,
			Account:   r.Account,
			Password:  r.Password,
			Region:    cfg.AWS.Region,
		}
		body := artifacts.BuildCredentialEmail(params)
		if err := os.WriteFile(filepath.Join(emailDir, r.Account+".txt"), []byte(body), 0o600); err != nil {
			return fmt.Errorf("failed to write credential email: %w", err)
		}
		htmlBody := artifacts.BuildCredentialEmailHTML(params)
		if err := os.WriteFile(filepath.Join(emailDir, r.Account+".html"), []byte(htmlBody), 0o600); err != nil {
			return fmt.Errorf("failed to write credential email: %w", err)
		}
	}
	return nil
}
