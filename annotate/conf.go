// seqannot: a tool for annotating mmCIF structure records with reference
// sequence alignments and source organism taxonomies.
// Copyright (c) 2024-2026 structbio.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/structbio/seqannot/blob/master/LICENSE.txt>.

package annotate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A Conf holds annotation run settings read from a YAML file. Command
// line flags override non-nil config values.
type Conf struct {
	UseSiftsAlignments *bool  `yaml:"use-sifts-alignments"`
	SiftsDir           string `yaml:"sifts-dir"`
	TaxonomyDB         string `yaml:"taxonomy-db"`
}

// LoadConf reads an annotation configuration from a YAML file.
func LoadConf(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	conf := new(Conf)
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config file %v: %w", path, err)
	}
	return conf, nil
}
