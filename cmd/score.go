package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/service"
)

func newScoreCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "score FILE",
		Short: "Score a YAML or JSON list of defects and print the result as JSON ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defects, err := readDefects(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			scorer, err := service.NewScorer(rt.cfg.Scoring)
			if err != nil {
				return err
			}
			result, err := scorer.Score(defects)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

// readDefects читает список дефектов; JSON разбирается как подмножество YAML.
func readDefects(stdin io.Reader, path string) ([]entity.Defect, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var defects []entity.Defect
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&defects); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode defects: %w", err)
	}
	return defects, nil
}
