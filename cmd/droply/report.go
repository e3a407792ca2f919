package main

import (
	"fmt"

	"github.com/zamdevio/droply/pkg/meta"
)

func printMeta(m *meta.ProcessMetadata, format string) error {
	switch format {
	case "json":
		doc, err := m.EncodeJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(doc))
	default:
		fmt.Print(m.RenderText())
	}
	return nil
}
