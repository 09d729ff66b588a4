package audidesk

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/util"
)

const (
	// DefaultPluginDirectory is where the host audio server looks for HAL plugin bundles
	DefaultPluginDirectory = "/Library/Audio/Plug-Ins/HAL"

	// DefaultBundleName is the driver bundle's on-disk name
	DefaultBundleName = "AudiDesk.driver"

	coreAudioService = "system/com.apple.audio.coreaudiod"
)

// Install copies the driver bundle at bundlePath into pluginDirectory and
// optionally restarts the host audio server so it picks the plugin up.
// Requires elevated privileges for the default plugin directory
func Install(logger *zap.SugaredLogger, bundlePath string, pluginDirectory string, restartHost bool) error {
	logger = logger.Named("admin")

	info, err := os.Stat(bundlePath)
	if err != nil {
		return fmt.Errorf("stat driver bundle: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("driver bundle is not a directory: %s", bundlePath)
	}

	targetPath := filepath.Join(pluginDirectory, filepath.Base(bundlePath))

	logger.Infow("Installing driver bundle", "from", bundlePath, "to", targetPath)

	// clear any previous install first, a stale bundle confuses the host
	if util.FileExists(targetPath) {
		logger.Debugw("Removing previously installed bundle", "path", targetPath)

		if err := os.RemoveAll(targetPath); err != nil {
			return fmt.Errorf("remove previous bundle: %w", err)
		}
	}

	if err := util.CopyDir(logger, bundlePath, targetPath); err != nil {
		return fmt.Errorf("copy driver bundle: %w", err)
	}

	logger.Info("Installed driver bundle successfully")

	if restartHost {
		return restartAudioHost(logger)
	}

	return nil
}

// Uninstall removes the installed driver bundle from pluginDirectory and
// optionally restarts the host audio server
func Uninstall(logger *zap.SugaredLogger, bundleName string, pluginDirectory string, restartHost bool) error {
	logger = logger.Named("admin")

	targetPath := filepath.Join(pluginDirectory, bundleName)

	if !util.FileExists(targetPath) {
		logger.Warnw("Driver bundle not installed, nothing to do", "path", targetPath)
		return nil
	}

	logger.Infow("Removing driver bundle", "path", targetPath)

	if err := os.RemoveAll(targetPath); err != nil {
		return fmt.Errorf("remove driver bundle: %w", err)
	}

	logger.Info("Removed driver bundle successfully")

	if restartHost {
		return restartAudioHost(logger)
	}

	return nil
}

func restartAudioHost(logger *zap.SugaredLogger) error {
	logger.Infow("Restarting host audio server", "service", coreAudioService)

	output, err := exec.Command("launchctl", "kickstart", "-kp", coreAudioService).CombinedOutput()
	if err != nil {
		logger.Warnw("launchctl kickstart failed", "error", err, "output", string(output))
		return fmt.Errorf("restart host audio server: %w", err)
	}

	logger.Debugw("launchctl kickstart completed", "output", string(output))

	return nil
}
