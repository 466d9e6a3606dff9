package cmd

import (
	"fmt"

	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const secretMask = "******"

// configCmd 配置命令
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "配置管理命令",
}

// configShowCmd 显示生效的配置
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示当前配置",
	Long:  `以YAML格式打印合并了默认值和环境变量后的配置，密钥会被隐藏`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("配置初始化失败: %v", err)
		}
		out, err := renderConfig(config.GlobalConfig)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// renderConfig 隐藏密钥后序列化为YAML
func renderConfig(cfg *config.Config) (string, error) {
	masked := *cfg
	if masked.JWT.SecretKey != "" {
		masked.JWT.SecretKey = secretMask
	}
	if masked.Database.Password != "" {
		masked.Database.Password = secretMask
	}
	if masked.Database.DSN != "" {
		masked.Database.DSN = secretMask
	}
	if masked.Redis.Password != "" {
		masked.Redis.Password = secretMask
	}

	data, err := yaml.Marshal(&masked)
	if err != nil {
		return "", fmt.Errorf("序列化配置失败: %v", err)
	}
	return string(data), nil
}
