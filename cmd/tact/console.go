package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/tact/pkg/plan"
	"github.com/ormasoftchile/tact/pkg/runtime"
	"github.com/ormasoftchile/tact/pkg/safety"
)

// consoleConfirmer prompts on the terminal when the safety gate
// suspends a batch. One answer covers the whole batch.
type consoleConfirmer struct{}

func (consoleConfirmer) Confirm(ctx context.Context, req safety.ConfirmRequest) (bool, error) {
	fmt.Println("\nThis plan contains destructive commands:")
	for _, cmd := range req.Dangerous {
		fmt.Printf("  ! %s\n", cmd)
	}

	rl, err := readline.New("Run the whole batch anyway? [y/N] ")
	if err != nil {
		return false, fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt || err == io.EOF {
			return false, nil
		}
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// previewConsole lets the user inspect and edit the plan before
// running it. Returns false when the user cancels.
func previewConsole(p *plan.Plan) (bool, error) {
	printPlan(p)

	completer := readline.NewPrefixCompleter(
		readline.PcItem("run"),
		readline.PcItem("edit"),
		readline.PcItem("add"),
		readline.PcItem("rm"),
		readline.PcItem("show"),
		readline.PcItem("cancel"),
	)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "plan> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "cancel",
	})
	if err != nil {
		return false, fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("Type 'run' to execute, 'edit N <command>', 'add <command>', 'rm N', or 'cancel'.")
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return false, nil
			}
			return false, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "run":
			return true, nil
		case "cancel", "quit":
			return false, nil
		case "show":
			printPlan(p)
		case "add":
			if len(fields) < 2 {
				fmt.Println("usage: add <command>")
				continue
			}
			p.Append(strings.Join(fields[1:], " "), "")
			printPlan(p)
		case "edit":
			if len(fields) < 3 {
				fmt.Println("usage: edit N <command>")
				continue
			}
			n, convErr := strconv.Atoi(fields[1])
			if convErr != nil {
				fmt.Println("usage: edit N <command>")
				continue
			}
			if err := p.Update(n-1, strings.Join(fields[2:], " ")); err != nil {
				fmt.Println(err)
			}
			printPlan(p)
		case "rm":
			if len(fields) < 2 {
				fmt.Println("usage: rm N")
				continue
			}
			n, convErr := strconv.Atoi(fields[1])
			if convErr != nil {
				fmt.Println("usage: rm N")
				continue
			}
			if err := p.Remove(n - 1); err != nil {
				fmt.Println(err)
			}
			printPlan(p)
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func printPlan(p *plan.Plan) {
	fmt.Printf("\nPlan: %s\n", p.Title)
	for i, step := range p.Steps {
		marker := " "
		if step.Risk == plan.RiskNeedsApproval {
			marker = "!"
		}
		fmt.Printf("  %d. [%s]%s %s\n", i+1, step.Lane, marker, step.Command)
	}
	fmt.Println()
}

// stepConsole feeds the between-step gate from the terminal while a
// run is in flight. It returns when done closes.
func stepConsole(gate *runtime.StepGate, done <-chan struct{}) {
	rl, err := readline.New("step [Enter to continue, s to stop] ")
	if err != nil {
		// Without a terminal the gate would deadlock the run.
		for {
			select {
			case <-done:
				return
			case <-time.After(50 * time.Millisecond):
				gate.Continue()
			}
		}
	}
	defer rl.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := rl.Readline()
			if err != nil {
				return
			}
			lines <- line
		}
	}()

	for {
		select {
		case <-done:
			return
		case line, ok := <-lines:
			if !ok {
				gate.Stop()
				<-done
				return
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "", "c", "continue", "next":
				gate.Continue()
			case "s", "stop", "q", "quit":
				gate.Stop()
			}
		}
	}
}
