package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Storage StorageConfig  `yaml:"storage"`
	FTP     FTPConfig      `yaml:"ftp"`
	SMB     SMBConfig      `yaml:"smb"`
	S3      S3Config       `yaml:"s3"`
	NFS     NFSConfig      `yaml:"nfs"`
	CDN     CDNConfig      `yaml:"cdn"`
	Links   LinksConfig    `yaml:"links"`
	Bunny   BunnyConfig    `yaml:"bunny"`
	JWT     JWTConfig      `yaml:"jwt"`
	Minio   MinioConfig    `yaml:"minio"`
	Folders []FolderConfig `yaml:"folders"`
	Logging LoggingConfig  `yaml:"logging"`
}

type StorageConfig struct {
	Type string `yaml:"type"`
}

type ServerConfig struct {
	Host string    `yaml:"host"`
	Port string    `yaml:"port"`
	TLS  TLSConfig `yaml:"tls"`
}

type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type FTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Root        string `yaml:"root"`
	DialTimeout string `yaml:"dial_timeout"`
}

type SMBConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Share    string `yaml:"share"`
	Path     string `yaml:"path"`
	Domain   string `yaml:"domain"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type S3Config struct {
	Endpoint   string `yaml:"endpoint"`
	Region     string `yaml:"region"`
	Bucket     string `yaml:"bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	PathPrefix string `yaml:"path_prefix"`
}

type NFSConfig struct {
	Server string `yaml:"server"`
	Export string `yaml:"export"`
	Path   string `yaml:"path"`
}

type CDNConfig struct {
	BaseURL string `yaml:"base_url"`
}

type LinksConfig struct {
	Type         string `yaml:"type"`
	SingleExpiry string `yaml:"single_expiry"`
	Concurrency  int    `yaml:"concurrency"`
}

type BunnyConfig struct {
	APIURL    string `yaml:"api_url"`
	APIKey    string `yaml:"api_key"`
	KeyPrefix string `yaml:"key_prefix"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
	Issuer    string `yaml:"issuer"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// FolderConfig is a remote folder exposed by GET /api/files. Key is the JSON
// field the folder's files are returned under.
type FolderConfig struct {
	Name   string `yaml:"name"`
	Key    string `yaml:"key"`
	Expiry string `yaml:"expiry"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the non-secret defaults. Credentials are never defaulted.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: "3000"},
		Storage: StorageConfig{Type: "ftp"},
		FTP:     FTPConfig{Port: 21},
		SMB:     SMBConfig{Port: 445},
		S3:      S3Config{Region: "us-east-1"},
		Links:   LinksConfig{Type: "bunny", SingleExpiry: "8h", Concurrency: 1},
		Bunny:   BunnyConfig{KeyPrefix: "medialinks"},
		JWT:     JWTConfig{Issuer: "medialinks"},
		Folders: []FolderConfig{
			{Name: "Images", Key: "images", Expiry: "5h"},
			{Name: "Movies", Key: "movies", Expiry: "10h"},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order, and validates the result.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Storage.Type, "STORAGE_TYPE")
	setString(&c.FTP.Host, "FTP_HOST")
	setString(&c.FTP.User, "FTP_USER")
	setString(&c.FTP.Password, "FTP_PASSWORD")
	setString(&c.CDN.BaseURL, "CDN_BASE_URL")
	setString(&c.Links.Type, "LINK_ISSUER")
	setString(&c.Bunny.APIURL, "BUNNY_API_URL")
	setString(&c.Bunny.APIKey, "BUNNY_API_KEY")
	setString(&c.JWT.SecretKey, "JWT_SECRET")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	if v := os.Getenv("FTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FTP_PORT must be a number: %w", err)
		}
		c.FTP.Port = port
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}

	if c.CDN.BaseURL == "" {
		return errors.New("cdn base_url is required")
	}
	if !strings.HasPrefix(c.CDN.BaseURL, "http://") && !strings.HasPrefix(c.CDN.BaseURL, "https://") {
		return fmt.Errorf("cdn base_url must be an http(s) URL: %s", c.CDN.BaseURL)
	}

	if err := c.validateFolders(); err != nil {
		return err
	}

	if _, err := c.GetSingleExpiry(); err != nil {
		return fmt.Errorf("links single_expiry: %w", err)
	}
	if c.Links.Concurrency < 1 {
		return errors.New("links concurrency must be at least 1")
	}

	if err := c.validateStorage(c.Storage.Type); err != nil {
		return err
	}

	return c.validateLinks(c.Links.Type)
}

func (c *Config) validateFolders() error {
	if len(c.Folders) == 0 {
		return errors.New("at least one folder is required")
	}
	seen := make(map[string]bool)
	for _, f := range c.Folders {
		if f.Name == "" || f.Key == "" {
			return errors.New("folder name and key are required")
		}
		if strings.ContainsAny(f.Name, `/\`) || f.Name == "." || f.Name == ".." {
			return fmt.Errorf("folder name must be a single path segment: %s", f.Name)
		}
		if seen[f.Key] {
			return fmt.Errorf("duplicate folder key: %s", f.Key)
		}
		seen[f.Key] = true
		if _, err := time.ParseDuration(f.Expiry); err != nil {
			return fmt.Errorf("folder %s expiry: %w", f.Name, err)
		}
	}
	return nil
}

func (c *Config) validateStorage(storageType string) error {
	switch storageType {
	case "ftp":
		if c.FTP.Host == "" {
			return errors.New("ftp host is required for ftp storage")
		}
		if c.FTP.Port <= 0 {
			return errors.New("ftp port must be positive")
		}
		if isUnset(c.FTP.User) || isUnset(c.FTP.Password) {
			return errors.New("ftp user and password must be set (no placeholders allowed)")
		}
		if c.FTP.DialTimeout != "" {
			if _, err := time.ParseDuration(c.FTP.DialTimeout); err != nil {
				return fmt.Errorf("ftp dial_timeout: %w", err)
			}
		}
	case "smb":
		if c.SMB.Server == "" {
			return errors.New("smb server is required for smb storage")
		}
		if c.SMB.Share == "" {
			return errors.New("smb share is required for smb storage")
		}
		if isUnset(c.SMB.User) || isUnset(c.SMB.Password) {
			return errors.New("smb user and password must be set (no placeholders allowed)")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required for s3 storage")
		}
		if isUnset(c.S3.AccessKey) || isUnset(c.S3.SecretKey) {
			return errors.New("s3 access_key and secret_key must be set (no placeholders allowed)")
		}
	case "nfs":
		if c.NFS.Server == "" {
			return errors.New("nfs server is required for nfs storage")
		}
		if c.NFS.Export == "" {
			return errors.New("nfs export is required for nfs storage")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", storageType)
	}
	return nil
}

func (c *Config) validateLinks(linkType string) error {
	switch linkType {
	case "bunny":
		if c.Bunny.APIURL == "" {
			return errors.New("bunny api_url is required for bunny links")
		}
		if isUnset(c.Bunny.APIKey) {
			return errors.New("bunny api_key must be set (no placeholders allowed)")
		}
	case "jwt":
		if isUnset(c.JWT.SecretKey) {
			return errors.New("jwt secret_key must be set (no placeholders allowed)")
		}
		if len(c.JWT.SecretKey) < 32 {
			return errors.New("jwt secret_key must be at least 32 bytes")
		}
	case "minio":
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			return errors.New("minio endpoint and bucket are required for minio links")
		}
		if isUnset(c.Minio.AccessKey) || isUnset(c.Minio.SecretKey) {
			return errors.New("minio access_key and secret_key must be set (no placeholders allowed)")
		}
	default:
		return fmt.Errorf("unknown link issuer type: %s", linkType)
	}
	return nil
}

func isUnset(s string) bool {
	return s == "" || containsPlaceholder(s)
}

func containsPlaceholder(s string) bool {
	placeholders := []string{"CHANGE_ME", "YOUR_VALUE_HERE", "REQUIRED", "PLACEHOLDER", "CHANGEME"}
	for _, p := range placeholders {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func (c *Config) GetSingleExpiry() (time.Duration, error) {
	return time.ParseDuration(c.Links.SingleExpiry)
}

func (c *Config) GetFTPDialTimeout() (time.Duration, error) {
	if c.FTP.DialTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.FTP.DialTimeout)
}

func (f FolderConfig) GetExpiry() (time.Duration, error) {
	return time.ParseDuration(f.Expiry)
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
