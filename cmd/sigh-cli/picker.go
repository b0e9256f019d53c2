package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sigh/sigh/internal/domain/cie"
	"github.com/sigh/sigh/internal/platform/autocomplete"
)

func cieCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cie",
		Short: "CIE-10 diagnosis catalog",
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the CIE-10 catalog",
		Args:  cobra.ExactArgs(1),
	}
	searchCmd.Flags().String("mode", cie.ModeDiagnosis, "Search mode (diagnostico, procedimiento)")
	searchCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		mode, _ := searchCmd.Flags().GetString("mode")
		codes, err := cie.NewService(a.gw).Search(ctx, args[0], mode)
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			fmt.Println("Sin resultados")
			return nil
		}
		for _, c := range codes {
			fmt.Printf("%-8s %s\n", c.CodigoCie, c.NombreCie)
		}
		return nil
	})

	pickCmd := &cobra.Command{
		Use:   "pick",
		Short: "Interactively pick a diagnosis with debounced search",
	}
	pickCmd.RunE = runAuthed(func(ctx context.Context, a *app, args []string) error {
		code, desc, err := pickDiagnosis(ctx, a)
		if err != nil {
			return err
		}
		fmt.Printf("%s - %s\n", code, desc)
		return nil
	})

	cmd.AddCommand(searchCmd, pickCmd)
	return cmd
}

// pickDiagnosis runs the diagnosis picker on the terminal, driven by the
// same debounced binding the form fields use. Each input line is treated as
// the control's new text; a line holding just a number selects that
// suggestion and an empty line on an open list commits the first one.
func pickDiagnosis(ctx context.Context, a *app) (code, desc string, err error) {
	var form struct {
		code string
		desc string
	}

	searcher := cie.NewSearcher(cie.NewService(a.gw))
	binding := autocomplete.NewBinding(searcher,
		autocomplete.FieldRef{Code: &form.code, Description: &form.desc},
		a.log,
		autocomplete.WithDebounce(a.cfg.DebounceDelay()),
		autocomplete.WithContext(ctx),
	)
	defer binding.Close()

	fmt.Println("Escriba para buscar un diagnóstico. Un número elige de la lista,")
	fmt.Println("una línea vacía confirma la primera sugerencia.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		view := binding.View()
		if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(view.Suggestions) {
			s := view.Suggestions[n-1]
			binding.Select(&s)
		} else if line == "" {
			if !binding.EnterPressed() {
				binding.TextChanged("", autocomplete.ReasonCleared)
			}
		} else {
			binding.TextChanged(line, autocomplete.ReasonTyped)
		}

		view = waitForSearch(binding, a.cfg.DebounceDelay())
		if form.code != "" {
			return form.code, form.desc, nil
		}

		if view.Open {
			if len(view.Suggestions) == 0 {
				fmt.Println("Sin resultados")
				continue
			}
			for i, s := range view.Suggestions {
				fmt.Printf("  %d) %s\n", i+1, s.Display())
			}
		}
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return "", "", scanErr
	}
	return "", "", fmt.Errorf("no diagnosis selected")
}

// waitForSearch blocks until the binding's debounced search settles.
func waitForSearch(b *autocomplete.Binding, debounce time.Duration) autocomplete.View {
	deadline := time.Now().Add(debounce + 10*time.Second)
	time.Sleep(debounce + 50*time.Millisecond)
	for {
		view := b.View()
		if !view.Loading || time.Now().After(deadline) {
			return view
		}
		time.Sleep(25 * time.Millisecond)
	}
}
