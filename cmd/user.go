package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const minPasswordLength = 6

var listPage, listLimit int

// userCmd 用户管理命令
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "用户管理命令",
	Long:  `用户管理相关的命令，包括创建管理员、列出用户、重置密码等`,
}

// createAdminCmd 创建管理员用户命令
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "创建管理员用户",
	Long:  `交互式创建管理员用户`,
	Run: func(cmd *cobra.Command, args []string) {
		createAdminUser()
	},
}

// listUsersCmd 列出用户命令
var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "列出用户",
	Long:  `分页列出系统中的用户`,
	Run: func(cmd *cobra.Command, args []string) {
		listUsers()
	},
}

// resetPasswordCmd 重置用户密码命令
var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password [email]",
	Short: "重置用户密码",
	Long:  `重置指定邮箱用户的密码`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resetUserPassword(args[0])
	},
}

// updateUserStatusCmd 更新用户状态命令
var updateUserStatusCmd = &cobra.Command{
	Use:   "update-status [email] [status]",
	Short: "更新用户状态",
	Long:  `更新用户状态 (active=启用, disabled=禁用)`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		updateUserStatus(args[0], args[1])
	},
}

func init() {
	listUsersCmd.Flags().IntVarP(&listPage, "page", "p", 1, "页码")
	listUsersCmd.Flags().IntVarP(&listLimit, "limit", "l", 50, "每页数量")

	// 添加用户相关子命令
	userCmd.AddCommand(createAdminCmd)
	userCmd.AddCommand(listUsersCmd)
	userCmd.AddCommand(resetPasswordCmd)
	userCmd.AddCommand(updateUserStatusCmd)

	// 将用户命令添加到根命令
	rootCmd.AddCommand(userCmd)
}

// readPassword 读取两次密码并校验
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %v", err)
	}
	fmt.Println() // 换行

	fmt.Print("请再次输入密码: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("读取确认密码失败: %v", err)
	}
	fmt.Println()

	password := string(passwordBytes)
	if password != string(confirmBytes) {
		return "", fmt.Errorf("两次输入的密码不一致")
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("密码长度不能少于%d位", minPasswordLength)
	}
	return password, nil
}

// createAdminUser 创建管理员用户
func createAdminUser() {
	services := newServices(mustInitialize())

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("请输入管理员名字: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("请输入管理员邮箱: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	if len([]rune(name)) < 2 || email == "" {
		fmt.Println("名字至少2个字符且邮箱不能为空")
		return
	}

	password, err := readPassword("请输入管理员密码: ")
	if err != nil {
		fmt.Println(err)
		return
	}

	user, err := services.User.CreateUser(context.Background(), name, email, password, model.RoleAdmin)
	if err != nil {
		fmt.Printf("创建管理员用户失败: %v\n", err)
		return
	}

	fmt.Printf("管理员用户创建成功！\n")
	fmt.Printf("ID: %d\n", user.ID)
	fmt.Printf("名字: %s\n", user.Name)
	fmt.Printf("邮箱: %s\n", user.Email)
}

// listUsers 列出用户
func listUsers() {
	services := newServices(mustInitialize())

	page := &dto.PageRequest{Page: listPage, Limit: listLimit}
	users, total, err := services.User.List(context.Background(), page)
	if err != nil {
		fmt.Printf("查询用户列表失败: %v\n", err)
		return
	}

	fmt.Printf("%-6s %-20s %-30s %-8s %-10s %-22s %-22s\n",
		"ID", "名字", "邮箱", "角色", "状态", "创建时间", "最后登录")
	fmt.Println(strings.Repeat("-", 120))

	for _, user := range users {
		lastLogin := user.LastLoginAt
		if lastLogin == "" {
			lastLogin = "从未登录"
		}
		fmt.Printf("%-6d %-20s %-30s %-8s %-10s %-22s %-22s\n",
			user.ID, user.Name, user.Email, user.Role, user.Status, user.CreatedAt, lastLogin)
	}
	fmt.Printf("\n第 %d 页，共 %d 个用户\n", page.Page, total)
}

// resetUserPassword 重置用户密码
func resetUserPassword(email string) {
	services := newServices(mustInitialize())

	ctx := context.Background()
	if _, err := services.User.GetUserByEmail(ctx, email); err != nil {
		fmt.Printf("用户不存在: %v\n", err)
		return
	}

	password, err := readPassword("请输入新密码: ")
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := services.User.ResetPassword(ctx, email, password); err != nil {
		fmt.Printf("重置密码失败: %v\n", err)
		return
	}

	fmt.Printf("用户 %s 的密码重置成功！\n", email)
}

// updateUserStatus 更新用户状态
func updateUserStatus(email, status string) {
	if status != model.UserStatusActive && status != model.UserStatusDisabled {
		fmt.Println("状态值必须是 active 或 disabled")
		return
	}

	services := newServices(mustInitialize())

	ctx := context.Background()
	user, err := services.User.GetUserByEmail(ctx, email)
	if err != nil {
		fmt.Printf("用户不存在: %v\n", err)
		return
	}

	if err := services.User.UpdateStatus(ctx, user.ID, status); err != nil {
		fmt.Printf("更新用户状态失败: %v\n", err)
		return
	}

	fmt.Printf("用户 %s 的状态已更新为: %s\n", email, status)
}
