package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// 这些变量在编译时通过 -ldflags 设置
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
	Platform  = runtime.GOOS + "/" + runtime.GOARCH
)

// versionCmd 版本信息命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Long:  `显示应用程序的版本信息`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionInfo())
	},
}

func init() {
	// 将版本命令添加到根命令
	rootCmd.AddCommand(versionCmd)
}

// versionInfo 版本信息文本
func versionInfo() string {
	return fmt.Sprintf("社交网络API服务\n版本: %s\nGit提交: %s\n构建时间: %s\nGo版本: %s\n平台: %s\n",
		Version, GitCommit, BuildTime, GoVersion, Platform)
}
