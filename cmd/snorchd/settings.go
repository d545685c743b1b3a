package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kakao/snorch/pkg/meta"
)

// settingsFile is the YAML document given by --settings-file. Fields left
// out keep their defaults.
type settingsFile struct {
	meta.ClusterSettings `yaml:",inline"`
	Password             string `yaml:"password"`
}

func loadSettings(path string) (*settingsFile, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSettings(buf)
}

func parseSettings(buf []byte) (*settingsFile, error) {
	sf := &settingsFile{ClusterSettings: meta.DefaultClusterSettings()}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(sf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("settings file: %w", err)
	}
	if sf.CQLPort <= 0 || sf.GossipPort <= 0 {
		return nil, fmt.Errorf("settings file: invalid ports %d, %d", sf.CQLPort, sf.GossipPort)
	}
	return sf, nil
}
