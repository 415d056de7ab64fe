package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
	"github.com/sbgntools/sbgnmap/pkg/pipeline"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml/af"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml/pd"
)

// readMapFile reads an SBGN-ML file and builds the map aggregate,
// returning the raw bytes alongside for hashing and storage.
func readMapFile(ctx context.Context, path string) (*sbgn.Map, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	runner := pipeline.NewRunner(nil, loggerFromContext(ctx))
	m, err := runner.Read(ctx, data, path)
	if err != nil {
		return nil, nil, err
	}
	return m, data, nil
}

// encodeMap converts a map aggregate back to its SBGN-ML wire form.
func encodeMap(m *sbgn.Map) (*sbgnml.File, error) {
	switch m.Flavor {
	case sbgn.FlavorProcessDescription:
		return pd.Write(m)
	case sbgn.FlavorActivityFlow:
		return af.Write(m)
	default:
		return nil, fmt.Errorf("unsupported map flavor %q", m.Flavor)
	}
}

// writeOutput writes data to path, or to stdout when path is "-" or
// empty.
func writeOutput(data []byte, path string) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeDoc encodes an SBGN-ML document to path, or stdout for "-".
func writeDoc(doc *sbgnml.File, path string) error {
	if path == "" || path == "-" {
		return sbgnml.Write(doc, os.Stdout)
	}
	return sbgnml.WriteFile(doc, path)
}
