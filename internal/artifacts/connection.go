package artifacts

import "fmt"

// DocParams identifies the instance a connection document describes.
type DocParams struct {
	Account    string
	PublicIP   string
	InstanceID string
	SSHUser    string
}

// BuildConnectionDoc renders the plain-text connection handout for one
// student: connection details, numbered setup steps referencing the
// connection script, and a troubleshooting note.
func BuildConnectionDoc(p DocParams) string {
	user := p.SSHUser
	if user == "" {
		user = "ubuntu"
	}
	return fmt.Sprintf(
		"VM Access -- %s\n"+
			"\n"+
			"Connection Details\n"+
			"------------------\n"+
			"Host:        %s\n"+
			"Username:    %s\n"+
			"Instance ID: %s\n"+
			"\n"+
			"How to Connect\n"+
			"--------------\n"+
			"\n"+
			"1. Download the '%s' file from the shared course folder.\n"+
			"\n"+
			"2. Open a terminal and navigate to the folder where you saved the file.\n"+
			"\n"+
			"3. Make the script executable and run it:\n"+
			"\n"+
			"   chmod +x %s\n"+
			"   ./%s\n"+
			"\n"+
			"   Or simply run it with bash:\n"+
			"\n"+
			"   bash %s\n"+
			"\n"+
			"4. You can now install your app and access it. Your webpage will be available at http://%s/\n"+
			"\n"+
			"Troubleshooting\n"+
			"---------------\n"+
			"- If the connection times out, the VM may still be starting up. Wait a minute and try again.\n"+
			"- If you have other issues, email your instructor for assistance.\n",
		p.Account,
		p.PublicIP,
		user,
		p.InstanceID,
		ScriptFilename,
		ScriptFilename,
		ScriptFilename,
		ScriptFilename,
		p.PublicIP,
	)
}
