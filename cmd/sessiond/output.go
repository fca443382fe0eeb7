package main

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
)

// outputJSON switches report output from YAML to JSON
var outputJSON bool

func writeReport(w io.Writer, v interface{}) error {
	var (
		data []byte
		err  error
	)
	if outputJSON {
		data, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = w.Write(data)
	return err
}
