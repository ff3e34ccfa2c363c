package models

import "fmt"

// DataSource tells real leads apart from placeholder ones. It is carried
// from the source adapter onto the stored search and every business in it.
type DataSource string

const (
	DataSourceLive      DataSource = "live"
	DataSourceSynthetic DataSource = "synthetic"
)

// ParseDataSource validates a stored or user-supplied discriminant.
func ParseDataSource(s string) (DataSource, error) {
	switch DataSource(s) {
	case DataSourceLive, DataSourceSynthetic:
		return DataSource(s), nil
	}
	return "", fmt.Errorf("unknown data source %q", s)
}

func (d DataSource) String() string { return string(d) }
