// fps-demo runs the literal scenarios against a real interpreter and
// prints pass/fail for each, for manual verification of a Shell build.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/smnsjas/fps"
)

func main() {
	configPath := flag.String("config", "", "optional fps.toml overlay")
	exePath := flag.String("exe", "", "interpreter executable (default: platform pwsh/powershell)")
	flag.Parse()

	opts := []fps.Option{}
	if *configPath != "" {
		opts = append(opts, fps.WithConfigFile(*configPath))
	}
	if *exePath != "" {
		opts = append(opts, fps.WithExePath(*exePath))
	}

	sh, err := fps.NewShell(opts...)
	if err != nil {
		log.Fatalf("fps-demo: start shell: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := sh.Destroy().Wait(ctx); err != nil {
			log.Printf("fps-demo: destroy: %v", err)
		}
	}()

	failed := 0
	run := func(name string, f func() error) {
		if err := f(); err != nil {
			log.Printf("FAIL %-40s %v", name, err)
			failed++
			return
		}
		log.Printf("PASS %-40s", name)
	}

	run("get-date has DateTime property", func() error {
		return scenarioGetDate(sh)
	})
	run("write-output as string format", func() error {
		return scenarioWriteOutputString(sh)
	})
	run("write-error surfaces in error stream", func() error {
		return scenarioWriteError(sh)
	})
	run("four interleaved sleeps stay FIFO", func() error {
		return scenarioFIFOOrdering(sh)
	})
	run("timeout then restart recovers", func() error {
		return scenarioTimeoutRestart(opts)
	})
	run("shared interpreter variable scope", func() error {
		return scenarioVariableScope(sh)
	})

	if failed > 0 {
		os.Exit(1)
	}
}

func scenarioGetDate(sh *fps.Shell) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r, err := sh.Call("Get-Date;", fps.FormatJSON).Wait(ctx)
	if err != nil {
		return err
	}
	items, ok := r.Success.([]any)
	if !ok || len(items) == 0 {
		return fmt.Errorf("expected non-empty success array, got %#v", r.Success)
	}
	obj, ok := items[0].(map[string]any)
	if !ok {
		return fmt.Errorf("expected success[0] to be an object, got %#v", items[0])
	}
	if _, ok := obj["DateTime"]; !ok {
		return fmt.Errorf("success[0] missing DateTime property: %#v", obj)
	}
	return nil
}

func scenarioWriteOutputString(sh *fps.Shell) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r, err := sh.Call(`Write-Output "Testing Write-Output";`, fps.FormatString).Wait(ctx)
	if err != nil {
		return err
	}
	items, ok := r.Success.([]string)
	if !ok || len(items) == 0 || !strings.Contains(items[0], "Testing Write-Output") {
		return fmt.Errorf("expected success[0] to contain the marker, got %#v", r.Success)
	}
	return nil
}

func scenarioWriteError(sh *fps.Shell) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r, err := sh.Call(`Write-Error "Testing Write-Error";`, fps.FormatNone).Wait(ctx)
	if err != nil {
		return err
	}
	if len(r.Error) == 0 || !strings.Contains(r.Error[0], "Testing Write-Error") {
		return fmt.Errorf("expected error[0] to contain the marker, got %#v", r.Error)
	}
	if items, ok := r.Success.([]any); ok && len(items) > 0 {
		return fmt.Errorf("expected success to be empty, got %#v", r.Success)
	}
	return nil
}

func scenarioFIFOOrdering(sh *fps.Shell) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fragments := []string{
		`Start-Sleep -m 300; Write-Output "Call 1";`,
		`Start-Sleep -m 200; Write-Output "Call 2";`,
		`Start-Sleep -m 100; Write-Output "Call 3";`,
		`Start-Sleep -m 400; Write-Output "Call 4";`,
	}
	handles := make([]*fps.Handle[fps.StreamsResult], len(fragments))
	for i, frag := range fragments {
		handles[i] = sh.Call(frag, fps.FormatString)
	}
	for i, h := range handles {
		r, err := h.Wait(ctx)
		if err != nil {
			return err
		}
		items, ok := r.Success.([]string)
		want := fmt.Sprintf("Call %d", i+1)
		if !ok || len(items) == 0 || !strings.Contains(items[0], want) {
			return fmt.Errorf("expected %q at position %d, got %#v", want, i, r.Success)
		}
	}
	return nil
}

func scenarioTimeoutRestart(base []fps.Option) error {
	opts := append(append([]fps.Option{}, base...), fps.WithTimeout(2*time.Second))
	timeoutShell, err := fps.NewShell(opts...)
	if err != nil {
		return err
	}
	defer timeoutShell.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := timeoutShell.Call("Start-Sleep -Seconds 3;", fps.FormatNone).Wait(ctx); err == nil {
		return fmt.Errorf("expected timeout error, got success")
	}

	r, err := timeoutShell.Call(`Write-Output "Call After Reset";`, fps.FormatString).Wait(ctx)
	if err != nil {
		return fmt.Errorf("expected recovery after restart: %w", err)
	}
	items, ok := r.Success.([]string)
	if !ok || len(items) == 0 || items[0] != "Call After Reset" {
		return fmt.Errorf("expected [\"Call After Reset\"], got %#v", r.Success)
	}
	return nil
}

func scenarioVariableScope(sh *fps.Shell) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := sh.Call(`$XYZ = 'something';`, fps.FormatString).Wait(ctx); err != nil {
		return err
	}
	r, err := sh.Call(`Write-Output $XYZ;`, fps.FormatString).Wait(ctx)
	if err != nil {
		return err
	}
	items, ok := r.Success.([]string)
	if !ok || len(items) == 0 || items[0] != "something" {
		return fmt.Errorf("expected [\"something\"], got %#v", r.Success)
	}
	return nil
}
