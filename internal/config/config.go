package config

import "github.com/spf13/viper"

// Config holds everything the API server needs at startup. Values come
// from config.env in the working directory, overridable through the
// environment.
type Config struct {
	Addr      string `mapstructure:"ADDR"`
	DSN       string `mapstructure:"DSN"`
	JwtSecret string `mapstructure:"JWT_SECRET"`

	// CreatorHandle is the promoted creator account users follow for
	// the one-time credit reward.
	CreatorHandle string `mapstructure:"CREATOR_HANDLE"`
}

// Load reads config.env from path and applies environment overrides.
func Load(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("ADDR", ":8080")
	viper.SetDefault("CREATOR_HANDLE", "@mhmmtcvlk")
	viper.BindEnv("DSN")
	viper.BindEnv("JWT_SECRET")

	if err = viper.ReadInConfig(); err != nil {
		// Environment-only deployments ship no config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
