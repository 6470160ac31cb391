package database

import (
	"io/fs"
	"strings"

	"github.com/necatisahhin/zeroAiBackend/internal/database/migrations"
)

func migrationsList() ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
