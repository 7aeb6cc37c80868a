package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"column/internal/core/config"
	"column/internal/core/database"
	"column/internal/core/logger"
	"column/internal/core/mailer"
	"column/internal/domain"
	"column/internal/repo"
	"column/internal/service"
)

// app 命令共享的运行时依赖
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (a *app) users() *repo.UserRepo { return repo.NewUserRepo(a.db) }

func main() {
	var (
		cfgPath string
		a       = &app{}
		cleanup = func() {}
	)

	root := &cobra.Command{
		Use:           "column-admin",
		Short:         "Column 运维命令",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read(cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
			db, err := database.FromConfig(cfg.DB, a.log)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			a.db = db
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) { cleanup() },
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "配置文件路径（默认 $CONFIG_PATH 或 ./configs/config.local.yaml）")

	root.AddCommand(
		migrateCmd(a),
		createAdminCmd(a),
		setRoleCmd(a),
		setStatusCmd(a),
		mailWorkerCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "建表 / 同步表结构",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := database.AutoMigrate(a.db.WithContext(cmd.Context())); err != nil {
				return err
			}
			a.log.Info("migrate done", zap.String("driver", a.cfg.DB.Driver))
			return nil
		},
	}
}

func createAdminCmd(a *app) *cobra.Command {
	var in service.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "创建已验证的管理员账号",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Role = string(domain.RoleAdmin)
			// AdminRegister 不发信
			svc := service.NewAuthService(a.users(), nil, mailer.New(mailer.LogSender{L: a.log}, mailer.Options{}), a.log)
			u, err := svc.AdminRegister(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s <%s> id=%s\n", u.Name, u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "显示名")
	cmd.Flags().StringVar(&in.Email, "email", "", "登录邮箱")
	cmd.Flags().StringVar(&in.Password, "password", "", "初始密码（至少 6 位）")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func setRoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <admin|author|reader>",
		Short: "修改用户角色",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := domain.ParseRole(args[1])
			if !ok {
				return fmt.Errorf("invalid role %q", args[1])
			}
			return a.updateUser(cmd, args[0], func(users *repo.UserRepo, u *domain.User) error {
				u.Role = role
				return users.SetRole(cmd.Context(), u.ID, role)
			})
		},
	}
}

func setStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <email> <active|blocked>",
		Short: "封禁 / 解封用户",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, ok := domain.ParseUserStatus(args[1])
			if !ok {
				return fmt.Errorf("invalid status %q", args[1])
			}
			return a.updateUser(cmd, args[0], func(users *repo.UserRepo, u *domain.User) error {
				u.Status = st
				return users.SetStatus(cmd.Context(), u.ID, st)
			})
		},
	}
}

func (a *app) updateUser(cmd *cobra.Command, email string, apply func(*repo.UserRepo, *domain.User) error) error {
	users := a.users()
	u, err := users.FindByEmail(cmd.Context(), domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %q not found", email)
	}
	if err := apply(users, u); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s role=%s status=%s\n", u.Email, u.Role, u.Status)
	return nil
}

// mailWorkerCmd 消费 amqp / pubsub 邮件队列，交给 Brevo 真正投递
func mailWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mail-worker",
		Short: "邮件队列消费者",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			queue, err := mailer.OpenQueue(ctx, a.cfg.Mail)
			if err != nil {
				return err
			}
			defer func() { _ = queue.Close() }()

			var sender mailer.Sender = mailer.LogSender{L: a.log}
			if a.cfg.Mail.APIKey != "" {
				sender, err = mailer.NewBrevo(mailer.BrevoConfig{
					APIURL:      a.cfg.Mail.APIURL,
					APIKey:      a.cfg.Mail.APIKey,
					SenderName:  a.cfg.Mail.SenderName,
					SenderEmail: a.cfg.Mail.SenderEmail,
				}, &http.Client{})
				if err != nil {
					return err
				}
			} else {
				a.log.Warn("mail-worker: no api key, messages are only logged")
			}

			a.log.Info("mail-worker started", zap.String("backend", a.cfg.Mail.Backend), zap.String("queue", a.cfg.Mail.Queue))
			err = mailer.Relay(ctx, queue, a.cfg.Mail.Queue, sender, a.log)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.log.Info("mail-worker stopped")
			return nil
		},
	}
}
