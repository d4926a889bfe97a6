package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"lab-backend/internal/timeutil"
	"lab-backend/pkg/labclient"
)

const (
	envURL       = "LAB_URL"
	envTokenFile = "LABCTL_TOKEN_FILE"
	tokenName    = ".labctl_token"
)

// errUsage is returned after usage text was already printed.
var errUsage = errors.New("uso incorreto")

type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(ctx context.Context, args []string) error
}

type app struct {
	out       io.Writer
	errOut    io.Writer
	baseURL   string
	tokenFile string
	timeout   time.Duration
	today     func() time.Time

	commands []*Command
}

func newApp(out, errOut io.Writer) *app {
	a := &app{
		out:       out,
		errOut:    errOut,
		baseURL:   os.Getenv(envURL),
		tokenFile: defaultTokenFile(),
		timeout:   30 * time.Second,
		today:     timeutil.Today,
	}
	a.register()
	return a
}

func defaultTokenFile() string {
	if p := os.Getenv(envTokenFile); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return tokenName
	}
	return home + string(os.PathSeparator) + tokenName
}

func (a *app) register() {
	a.commands = []*Command{
		{Name: "login", Description: "Autentica e guarda o token", Usage: "labctl login -email <email> [-senha <senha>] [-codigo <2fa>]", Run: a.login},
		{Name: "materiais", Description: "Lista materiais", Usage: "labctl materiais [-busca texto] [-filtro all|low_stock|expired|near_expiry] [-tipo tipo] [-ordenar campo]", Run: a.materials},
		{Name: "baixa", Description: "Registra baixa de estoque", Usage: "labctl baixa (-id <id> | -codigo <codigo>) -qtd <quantidade> [-obs texto]", Run: a.baixa},
		{Name: "exportar", Description: "Exporta materiais em CSV (ou PDF)", Usage: "labctl exportar [-out caminho] [-pdf] [-busca texto] [-filtro modo] [-tipo tipo] [-ordenar campo]", Run: a.export},
		{Name: "equipamentos", Description: "Lista equipamentos", Usage: "labctl equipamentos [-busca texto] [-status s] [-categoria c] [-ordenar nome|codigo|aquisicao]", Run: a.equipment},
		{Name: "manutencoes", Description: "Lista manutenções", Usage: "labctl manutencoes [-busca texto] [-status s] [-tipo t] [-equipamento id]", Run: a.maintenance},
		{Name: "concluir", Description: "Conclui uma manutenção agendada", Usage: "labctl concluir -id <id> [-custo valor] [-obs texto]", Run: a.complete},
		{Name: "alertas", Description: "Mostra alertas de estoque e validade", Usage: "labctl alertas", Run: a.alerts},
	}
}

func (a *app) lookup(name string) *Command {
	for _, c := range a.commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Execute parses global flags and dispatches to a sub-command.
func (a *app) Execute(args []string) error {
	fs := flag.NewFlagSet("labctl", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.StringVar(&a.baseURL, "url", a.baseURL, "endereço da API (padrão $"+envURL+" ou "+labclient.DefaultBaseURL+")")
	fs.DurationVar(&a.timeout, "timeout", a.timeout, "tempo limite por requisição")
	fs.Usage = func() { a.printHelp(a.errOut) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	if fs.NArg() == 0 {
		a.printHelp(a.errOut)
		return errUsage
	}
	name := fs.Arg(0)
	switch name {
	case "help", "ajuda":
		a.printHelp(a.out)
		return nil
	case "version", "versao":
		fmt.Fprintln(a.out, "labctl", version)
		return nil
	}

	cmd := a.lookup(name)
	if cmd == nil {
		a.printHelp(a.errOut)
		return fmt.Errorf("comando desconhecido: %s", name)
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	return cmd.Run(ctx, fs.Args()[1:])
}

func (a *app) printHelp(w io.Writer) {
	fmt.Fprintln(w, "labctl - cliente de linha de comando do controle de laboratório")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USO:")
	fmt.Fprintln(w, "    labctl [-url endereço] <comando> [opções]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMANDOS:")
	for _, c := range a.commands {
		fmt.Fprintf(w, "    %-13s %s\n", c.Name, c.Description)
	}
}

// flags builds the flag set for c; parse errors print c's usage.
func (a *app) flags(c string) *flag.FlagSet {
	fs := flag.NewFlagSet(c, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.Usage = func() {
		if cmd := a.lookup(c); cmd != nil {
			fmt.Fprintf(a.errOut, "%s\n\nUSO:\n    %s\n\nOPÇÕES:\n", cmd.Description, cmd.Usage)
		}
		fs.PrintDefaults()
	}
	return fs
}

func (a *app) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("argumentos inesperados: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}
