package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
	"github.com/Armandk18/taskmanager/storage"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	engine     string
	repos      *storage.Repositories
	usrSvc     *user.Service
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func newCommandLine(engine string, repos *storage.Repositories, out io.Writer) *commandLine {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	return &commandLine{
		engine:     engine,
		repos:      repos,
		usrSvc:     user.NewService(repos.Users),
		validate:   validate,
		translator: translator,
		out:        out,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                             - run a goose command (up, down, status, version, ...)")
	fmt.Fprintln(cli.out, "  adduser --email EMAIL --name NAME --role ROLE      - create or update a user")
	fmt.Fprintln(cli.out, "  resetpassword --email EMAIL                        - reset user's password")
	fmt.Fprintln(cli.out, "  seed                                               - create the missing demo accounts")
	fmt.Fprintln(cli.out, "Passwords are prompted.")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		flags := pflag.NewFlagSet("adduser", pflag.ContinueOnError)
		flags.SetOutput(cli.out)
		email := flags.String("email", "", "the user's email")
		name := flags.String("name", "", "the user's display name")
		role := flags.String("role", string(user.RoleStudent), "student, teacher or admin")
		if err := flags.Parse(args[2:]); err != nil {
			return cli.flagErr(err)
		}
		if *email == "" || *name == "" {
			flags.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			flags.Usage()
			return errHelp
		}
		return cli.addUser(*email, *name, *role, pwd)

	case "resetpassword":
		flags := pflag.NewFlagSet("resetpassword", pflag.ContinueOnError)
		flags.SetOutput(cli.out)
		email := flags.String("email", "", "the user's email. The password will be prompted next.")
		if err := flags.Parse(args[2:]); err != nil {
			return cli.flagErr(err)
		}
		if *email == "" {
			flags.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			flags.Usage()
			return errHelp
		}
		return cli.resetPassword(*email, pwd)

	case "seed":
		return cli.seed()

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagErr(err error) error {
	if err == pflag.ErrHelp {
		return errHelp
	}
	return err
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

// explain renders validation failures as "field: message" lines.
func (cli *commandLine) explain(err error) string {
	switch e := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fields := core.TranslateErrors(e, cli.translator)
		lines := make([]string, 0, len(fields))
		for fld, msg := range fields {
			lines = append(lines, fld+": "+msg)
		}
		sort.Strings(lines)
		return strings.Join(lines, "\n")
	case *core.ValidationError:
		if len(e.Fields) > 0 {
			return e.Fields[0].Field + ": " + e.Fields[0].Error
		}
	}
	return err.Error()
}
