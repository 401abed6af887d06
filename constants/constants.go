package constants

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "MUSICBOX"

// Init loads an optional .env file, then the config file at configPath if
// given. Environment variables like MUSICBOX_OUT_DIR or MUSICBOX_S3_BUCKET
// override both.
func Init(configPath string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		return viper.ReadInConfig()
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("out_dir", "./out")
	viper.SetDefault("addr", ":5000")
	viper.SetDefault("canvas_width", 760)
	viper.SetDefault("strict", false)
	viper.SetDefault("tempo", 120)
	viper.SetDefault("font", "")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")

	viper.SetDefault("storage.driver", "local")
	viper.SetDefault("s3.bucket", "")
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.base_url", "")

	viper.SetDefault("dynamodb.endpoint", "")
	viper.SetDefault("dynamodb.region", "")
	viper.SetDefault("dynamodb.table", "musicbox-scores")

	viper.SetDefault("recognizer.kind", "oemer")
	viper.SetDefault("recognizer.oemer_bin", "oemer")
	viper.SetDefault("recognizer.static_dir", "./static")
	viper.SetDefault("upload.max_bytes", 32<<20)
}

func GetOutDir() string {
	return viper.GetString("out_dir")
}

func GetAddr() string {
	return viper.GetString("addr")
}

func GetCanvasWidth() float64 {
	return viper.GetFloat64("canvas_width")
}

// GetStrict reports whether measures that do not fill their time
// signature are rejected.
func GetStrict() bool {
	return viper.GetBool("strict")
}

func GetTempo() float64 {
	return viper.GetFloat64("tempo")
}

func GetFontPath() string {
	return viper.GetString("font")
}

func GetLogLevel() string {
	return viper.GetString("log.level")
}

func GetLogFile() string {
	return viper.GetString("log.file")
}

func GetStorageDriver() string {
	return viper.GetString("storage.driver")
}

func GetS3Bucket() string {
	return viper.GetString("s3.bucket")
}

func GetS3Region() string {
	return viper.GetString("s3.region")
}

func GetS3BaseURL() string {
	return viper.GetString("s3.base_url")
}

func GetDynamoEndpoint() string {
	return viper.GetString("dynamodb.endpoint")
}

func GetDynamoRegion() string {
	return viper.GetString("dynamodb.region")
}

func GetDynamoTable() string {
	return viper.GetString("dynamodb.table")
}

func GetRecognizer() string {
	return viper.GetString("recognizer.kind")
}

func GetOemerBin() string {
	return viper.GetString("recognizer.oemer_bin")
}

func GetStaticDir() string {
	return viper.GetString("recognizer.static_dir")
}

func GetMaxUploadBytes() int64 {
	return viper.GetInt64("upload.max_bytes")
}
