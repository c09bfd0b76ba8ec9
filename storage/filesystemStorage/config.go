package filesystemStorage

import (
	"os"
	"path/filepath"

	"package-index/config"
)

// GetUploadRoot returns the configured upload root, ensuring it's absolute
func GetUploadRoot() string {
	root := config.Cfg.Storage.UploadRoot
	if !filepath.IsAbs(root) {
		wd, _ := os.Getwd()
		return filepath.Join(wd, root)
	}
	return root
}
