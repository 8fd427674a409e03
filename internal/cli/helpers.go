package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

func printResource(v any, output string) error {
	switch output {
	case yamlFormat:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, string(data))
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
	}
	return nil
}
