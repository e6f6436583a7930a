package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

var Path = "mediakit.yaml"

var instance *MediaKitConfig
var singletonLock = &sync.Once{}

func reloadConfig() (*MediaKitConfig, error) {
	c := NewDefaultConfig()

	// Write a default config if the one given doesn't exist
	_, err := os.Stat(Path)
	exists := err == nil || !os.IsNotExist(err)
	if !exists {
		fmt.Println("Generating new configuration...")
		configBytes, err := yaml.Marshal(c)
		if err != nil {
			return nil, err
		}
		if err = os.WriteFile(Path, configBytes, 0644); err != nil {
			return nil, err
		}
	}

	buffer, err := os.ReadFile(Path)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(buffer, &c); err != nil {
		return nil, err
	}

	return c, nil
}

func Get() *MediaKitConfig {
	if instance == nil {
		singletonLock.Do(func() {
			c, err := reloadConfig()
			if err != nil {
				panic(err)
			}
			instance = c
		})
	}
	return instance
}
