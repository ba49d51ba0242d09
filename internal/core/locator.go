package core

import (
	"path/filepath"
)

// DataDir is the folder under the base directory holding the source datasets.
const DataDir = "data"

// SourcePath returns <base>/data/<directory>/<file> for a registered source.
func SourcePath(baseDir, key string) string {
	def := MustGet(key)
	return filepath.Join(baseDir, DataDir, def.Info.Directory, def.Info.File)
}

// OutputPath returns <base>/combined_<year>.csv.
func OutputPath(baseDir, year string) string {
	return filepath.Join(baseDir, "combined_"+year+".csv")
}

// ResolvePaths locates the three files of a run under baseDir.
func ResolvePaths(baseDir, year string) Paths {
	return Paths{
		Life:   SourcePath(baseDir, SourceLife),
		Health: SourcePath(baseDir, SourceHealth),
		Output: OutputPath(baseDir, year),
	}
}

// WithOverrides returns p with every non-empty override applied.
func (p Paths) WithOverrides(o Paths) Paths {
	if o.Life != "" {
		p.Life = o.Life
	}
	if o.Health != "" {
		p.Health = o.Health
	}
	if o.Output != "" {
		p.Output = o.Output
	}
	return p
}
