// limeblog server binary. Configuration comes from a .env file, an optional
// config.yaml, and environment variables; environment variables win.
package main

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"

	"github.com/cariocalimao/limeblog"
)

func main() {
	cfg := loadConfig()

	app := limeblog.New(cfg)
	defer app.Close()

	if cfg.AdminKey == "" {
		log.Println("ADMIN_KEY is not set: post creation is disabled")
	}
	log.Printf("limeblog listening on %s", cfg.Addr)
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() limeblog.Config {
	// .env is optional; it only feeds the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, skipping")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("site_name", "carioca de limão")
	viper.SetDefault("site_url", "http://localhost:8000")
	viper.SetDefault("site_description", "")
	viper.SetDefault("addr", ":4000")
	viper.SetDefault("data_file", "data/posts.json")
	viper.SetDefault("upload_dir", "uploads")
	viper.SetDefault("store_driver", "file")
	viper.SetDefault("sqlite_path", "data/blog.db")
	viper.SetDefault("admin_key", "")
	viper.SetDefault("allowed_origins", []string{"http://localhost:8000"})
	viper.SetDefault("max_upload_bytes", int64(5<<20))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("parse config.yaml: %v", err)
		}
	}

	return limeblog.Config{
		SiteName:        viper.GetString("site_name"),
		SiteURL:         strings.TrimSuffix(viper.GetString("site_url"), "/"),
		SiteDescription: viper.GetString("site_description"),
		Addr:            viper.GetString("addr"),
		DataFile:        viper.GetString("data_file"),
		UploadDir:       viper.GetString("upload_dir"),
		StoreDriver:     viper.GetString("store_driver"),
		SQLitePath:      viper.GetString("sqlite_path"),
		AdminKey:        viper.GetString("admin_key"),
		AllowedOrigins:  viper.GetStringSlice("allowed_origins"),
		MaxUploadBytes:  viper.GetInt64("max_upload_bytes"),
	}
}
