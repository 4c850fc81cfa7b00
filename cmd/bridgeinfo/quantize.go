// Copyright 2025 Studyboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/studyboard/bridge/bridge"
	"github.com/studyboard/bridge/quantize"
)

func newQuantizeCmd() *cobra.Command {
	var (
		file      string
		blockSize int
	)
	cmd := &cobra.Command{
		Use:   "quantize [values...]",
		Short: "Quantize float32 weights to int8 and report the round-trip error",
		Long: `Quantize reads float32 weights from the arguments or from --file
(separated by whitespace or commas), quantizes them to int8 and prints the
quantization parameters together with the largest reconstruction error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := bridge.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("block-size") {
				cfg.BlockSize = blockSize
			}

			weights, err := readWeights(args, file)
			if err != nil {
				return err
			}

			b, err := bridge.New(cfg, bridge.WithLogger(
				zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}),
			))
			if err != nil {
				return err
			}
			defer b.Close()

			blocks, err := b.QuantizeBlocks(weights)
			if err != nil {
				return err
			}
			return printBlocks(cmd.OutOrStdout(), weights, blocks)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read weights from a file ('-' for stdin)")
	cmd.Flags().IntVar(&blockSize, "block-size", 0, "weights per block (0 for one block)")
	return cmd
}

func readWeights(args []string, file string) ([]float32, error) {
	fields := append([]string(nil), args...)
	if file != "" {
		var (
			data []byte
			err  error
		)
		if file == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return nil, fmt.Errorf("read weights: %w", err)
		}
		fields = append(fields, strings.FieldsFunc(string(data), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
		})...)
	}

	weights := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, fmt.Errorf("parse weight %q: %w", f, err)
		}
		weights = append(weights, float32(v))
	}
	return weights, nil
}

func printBlocks(w io.Writer, weights []float32, blocks []quantize.Vector) error {
	restored := quantize.DequantizeBlocks(blocks)
	if _, err := fmt.Fprintf(w, "count: %d\nblocks: %d\n", len(weights), len(blocks)); err != nil {
		return err
	}
	for i, v := range blocks {
		if _, err := fmt.Fprintf(w, "block %d: min=%g scale=%g data=%v\n", i, v.Min, v.Scale, v.Data); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "max_error: %g\n", quantize.MaxAbsError(restored, weights))
	return err
}
