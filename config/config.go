package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Converter ConverterConfig `yaml:"converter"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type StorageConfig struct {
	Type    string      `yaml:"type"` // local, minio
	Dir     string      `yaml:"dir"`  // 本地存储根目录
	WorkDir string      `yaml:"work_dir"`
	Minio   MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type ConverterConfig struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

type SchedulerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	MaxWorkers int           `yaml:"max_workers"`
	JobTimeout time.Duration `yaml:"job_timeout"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func loadConfig() *Config {
	config := &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		Storage: StorageConfig{
			Type:    "local",
			Dir:     "./data/blobs",
			WorkDir: "./data/work",
		},
		Converter: ConverterConfig{
			Binary:  "soffice",
			Timeout: 120 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Interval:   3 * time.Second,
			MaxWorkers: 2,
			JobTimeout: 10 * time.Minute,
		},
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	// 环境变量优先级高于配置文件
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if blobDir := os.Getenv("BLOB_DIR"); blobDir != "" {
		config.Storage.Dir = blobDir
	}
	if workDir := os.Getenv("WORK_DIR"); workDir != "" {
		config.Storage.WorkDir = workDir
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.Minio.Endpoint = endpoint
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Storage.Minio.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.Storage.Minio.SecretKey = secretKey
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.Storage.Minio.Bucket = bucket
	}

	if binary := os.Getenv("SOFFICE_PATH"); binary != "" {
		config.Converter.Binary = binary
	}

	if config.Storage.WorkDir == "" {
		config.Storage.WorkDir = filepath.Join(filepath.Dir(config.Storage.Dir), "work")
	}

	return config
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
