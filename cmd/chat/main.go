// Parlante - interactive terminal chat
//
// Binds the chat core directly to a stdin/stdout loop. Special commands:
// "usuarios" lists known speakers, "historial <nombre>" prints a speaker's
// log, "cambiar usuario <nombre>" switches the session manually, and
// "salir" exits.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/svaldes/parlante/internal/chat"
	"github.com/svaldes/parlante/internal/config"
	"github.com/svaldes/parlante/internal/domain"
	"github.com/svaldes/parlante/internal/llm"
	"github.com/svaldes/parlante/internal/llm/openai"
	"github.com/svaldes/parlante/internal/store"
)

func main() {
	// Keep stdout clean for the conversation; warnings go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error de configuración:", err)
		os.Exit(1)
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error al abrir el historial:", err)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	prompts := llm.DefaultPrompts()
	if cfg.PromptsPath != "" {
		prompts, err = llm.LoadPrompts(cfg.PromptsPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error al cargar prompts:", err)
			os.Exit(1)
		}
	}

	provider, err := openai.New(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Prompts: prompts,
		Client:  &http.Client{Timeout: cfg.OpenAI.Timeout},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error al inicializar el proveedor:", err)
		os.Exit(1)
	}

	runREPL(chat.NewService(repo, provider, prompts))
}

func runREPL(svc *chat.Service) {
	fmt.Println("Chat multi-usuario — identifícate diciendo 'Soy [tu nombre]'")
	fmt.Println("Comandos: salir | usuarios | historial <nombre> | cambiar usuario <nombre>")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		label := svc.ActiveSpeaker()
		if label == "" {
			label = "sin identificar"
		}
		fmt.Printf("\n[%s] Tú: ", label)

		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case lower == "salir" || lower == "quit" || lower == "exit":
			fmt.Println("¡Hasta luego!")
			return

		case lower == "usuarios":
			printSpeakers(ctx, svc)

		case strings.HasPrefix(lower, "historial"):
			name := strings.TrimSpace(line[len("historial"):])
			if name == "" {
				fmt.Println("Uso: historial <nombre>")
				continue
			}
			printHistory(ctx, svc, name)

		case strings.HasPrefix(lower, "cambiar usuario"):
			name := strings.TrimSpace(line[len("cambiar usuario"):])
			if name == "" {
				fmt.Println("Uso: cambiar usuario <nombre>")
				continue
			}
			fmt.Println("Usuario cambiado a:", svc.SetActiveSpeaker(name))

		default:
			reply := svc.ProcessTurn(ctx, line)
			fmt.Println("Asistente:", reply.Message)
			if !reply.NeedsIdentification && !reply.Persisted {
				fmt.Println("(aviso: este turno no se guardó en el historial)")
			}
		}
	}
}

func printSpeakers(ctx context.Context, svc *chat.Service) {
	speakers, err := svc.KnownSpeakers(ctx)
	if err != nil {
		fmt.Println("No se pudo consultar el historial:", err)
		return
	}
	if len(speakers) == 0 {
		fmt.Println("No hay usuarios con historial registrados")
		return
	}
	fmt.Println("Usuarios conocidos:", strings.Join(speakers, ", "))
}

func printHistory(ctx context.Context, svc *chat.Service, name string) {
	msgs, err := svc.History(ctx, name)
	if err != nil {
		fmt.Println("No se pudo leer el historial:", err)
		return
	}
	if len(msgs) == 0 {
		fmt.Println("No hay conversaciones previas.")
		return
	}
	for i, msg := range msgs {
		who := name
		if msg.Role == domain.RoleAssistant {
			who = "Asistente"
		}
		fmt.Printf("%d. %s: %s\n", i+1, who, msg.Content)
	}
}
