package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	repo   *repository.Repository
	sqlDB  *sql.DB
	out    io.Writer
	logger *zap.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  users                                          - 列出全部用户")
	fmt.Fprintln(cli.out, "  updates                                        - 列出全部周进度")
	fmt.Fprintln(cli.out, "  addadmin -username USERNAME                    - 添加管理员（随后输入密码）")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME               - 重置密码（随后输入密码）")
	fmt.Fprintln(cli.out, "  addupdate -username U -week N -content TEXT    - 为用户添加一条周进度")
	fmt.Fprintln(cli.out, "  seed -file FIXTURES.yaml                       - 导入 YAML 样例数据")
	fmt.Fprintln(cli.out, "  migrate up|down|version                        - 数据库迁移")
	fmt.Fprintln(cli.out, "  inspect                                        - 交互式数据检视")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ContinueOnError)
	addAdminUname := addAdminCmd.String("username", "", "管理员用户名，密码随后输入")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "用户名，新密码随后输入")

	addUpdateCmd := flag.NewFlagSet("addupdate", flag.ContinueOnError)
	addUpdateUname := addUpdateCmd.String("username", "", "用户名")
	addUpdateWeek := addUpdateCmd.Int("week", 0, "周次（1-10）")
	addUpdateContent := addUpdateCmd.String("content", "", "进度内容")

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedFile := seedCmd.String("file", "", "YAML 样例数据文件")

	for _, fs := range []*flag.FlagSet{addAdminCmd, resetPasswordCmd, addUpdateCmd, seedCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "users":
		return cli.listUsers()

	case "updates":
		return cli.listUpdates()

	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		uname := strings.TrimSpace(*addAdminUname)
		if uname == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.addAdmin(uname, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "addupdate":
		if err := addUpdateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUpdateUname == "" || *addUpdateWeek == 0 {
			addUpdateCmd.Usage()
			return errHelp
		}
		return cli.addUpdate(*addUpdateUname, *addUpdateWeek, *addUpdateContent)

	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedFile)

	case "migrate":
		if len(args) < 3 {
			fmt.Fprintln(cli.out, "Usage: migrate up|down|version")
			return errHelp
		}
		return cli.migrate(args[2])

	case "inspect":
		return cli.inspect()

	default:
		cli.printUsage()
		return errHelp
	}
}

// promptPassword 从终端读取密码（不回显）
func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}
