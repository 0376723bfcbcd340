package authbridge

import (
	"os/exec"
	"runtime"

	"github.com/skillsenselab/authbridge/errors"
)

// openBrowser launches the platform's default browser at url.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return errors.ExternalServiceError("browser", err)
	}
	// Detach: the browser's lifetime is not ours to manage.
	go cmd.Wait()
	return nil
}
