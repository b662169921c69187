// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Archive  ArchiveConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	InputDir           string
	OutputDir          string
	InventoryConfig    string
	SalesConfig        string
	SKUMapPath         string
	BundleMapPath      string
	PlanogramPath      string
	StoreMapPath       string
	SKUMasterPath      string
	LeadTimeWeeks      int
	SalesWindowDays    int
	ChannelConcurrency int
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	SummaryTTLSeconds int
}

// ArchiveConfig configures the optional S3-compatible report archive.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// DriveConfig configures optional Google Drive input sync.
type DriveConfig struct {
	Enabled         bool
	CredentialsFile string
	FolderPath      string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "retail_ars")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_INPUT_DIR", "./data/input")
		viper.SetDefault("APP_OUTPUT_DIR", "./data/output")
		viper.SetDefault("APP_INVENTORY_CONFIG", "./configs/channels_inventory.json")
		viper.SetDefault("APP_SALES_CONFIG", "./configs/channels_sales.json")
		viper.SetDefault("APP_SKU_MAP", "./data/master/SKU_Mapping.xlsx")
		viper.SetDefault("APP_BUNDLE_MAP", "./data/master/BOM.csv")
		viper.SetDefault("APP_PLANOGRAM", "./data/master/planogram_layout.csv")
		viper.SetDefault("APP_STORE_MAP", "./data/master/store_shelf_ref.csv")
		viper.SetDefault("APP_SKU_MASTER", "./data/master/sku_master.csv")
		viper.SetDefault("APP_LEAD_TIME_WEEKS", 3)
		viper.SetDefault("APP_SALES_WINDOW_DAYS", 270)
		viper.SetDefault("APP_CHANNEL_CONCURRENCY", 4)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 60)
		viper.SetDefault("ARCHIVE_ENABLED", false)
		viper.SetDefault("ARCHIVE_ENDPOINT", "")
		viper.SetDefault("ARCHIVE_ACCESS_KEY", "")
		viper.SetDefault("ARCHIVE_SECRET_KEY", "")
		viper.SetDefault("ARCHIVE_BUCKET", "")
		viper.SetDefault("ARCHIVE_REGION", "us-east-1")
		viper.SetDefault("ARCHIVE_USE_SSL", true)
		viper.SetDefault("DRIVE_ENABLED", false)
		viper.SetDefault("DRIVE_CREDENTIALS_FILE", "")
		viper.SetDefault("DRIVE_FOLDER_PATH", "")

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure input and output directories exist
		ensureDir(viper.GetString("APP_INPUT_DIR"))
		ensureDir(viper.GetString("APP_OUTPUT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				InputDir:           viper.GetString("APP_INPUT_DIR"),
				OutputDir:          viper.GetString("APP_OUTPUT_DIR"),
				InventoryConfig:    viper.GetString("APP_INVENTORY_CONFIG"),
				SalesConfig:        viper.GetString("APP_SALES_CONFIG"),
				SKUMapPath:         viper.GetString("APP_SKU_MAP"),
				BundleMapPath:      viper.GetString("APP_BUNDLE_MAP"),
				PlanogramPath:      viper.GetString("APP_PLANOGRAM"),
				StoreMapPath:       viper.GetString("APP_STORE_MAP"),
				SKUMasterPath:      viper.GetString("APP_SKU_MASTER"),
				LeadTimeWeeks:      viper.GetInt("APP_LEAD_TIME_WEEKS"),
				SalesWindowDays:    viper.GetInt("APP_SALES_WINDOW_DAYS"),
				ChannelConcurrency: viper.GetInt("APP_CHANNEL_CONCURRENCY"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				SummaryTTLSeconds: viper.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
			},
			Archive: ArchiveConfig{
				Enabled:   viper.GetBool("ARCHIVE_ENABLED"),
				Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
				AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
				SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
				Bucket:    viper.GetString("ARCHIVE_BUCKET"),
				Region:    viper.GetString("ARCHIVE_REGION"),
				UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
			},
			Drive: DriveConfig{
				Enabled:         viper.GetBool("DRIVE_ENABLED"),
				CredentialsFile: viper.GetString("DRIVE_CREDENTIALS_FILE"),
				FolderPath:      viper.GetString("DRIVE_FOLDER_PATH"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
