// Package config handles tool configuration loading and management.
package config

// Config holds all plytool settings.
type Config struct {
	Codec   CodecConfig   `yaml:"codec"`
	Encode  EncodeConfig  `yaml:"encode"`
	Logging LoggingConfig `yaml:"logging"`
}

// CodecConfig holds decoder settings.
type CodecConfig struct {
	PerFaceToPerVertex bool   `yaml:"per_face_to_per_vertex"`
	TriangleFastPath   bool   `yaml:"triangle_fast_path"`
	ObjectIDAttribute  string `yaml:"object_id_attribute"`
}

// EncodeConfig holds encoder settings.
type EncodeConfig struct {
	ByteOrder string `yaml:"byte_order"` // native, little or big
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Codec: CodecConfig{
			PerFaceToPerVertex: true,
			TriangleFastPath:   true,
			ObjectIDAttribute:  "object_id",
		},
		Encode: EncodeConfig{
			ByteOrder: "native",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
