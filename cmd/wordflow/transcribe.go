package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nickigann03/word-flow-app/pkg/session"
	"github.com/nickigann03/word-flow-app/pkg/transcribe"
)

var transcribeInsert string

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [audio-file]",
	Short: "Transcribe a saved audio recording",
	Long: `Stream a saved audio file through the live transcription service and
print the recognized text. Requires GLADIA_API_KEY in the environment.

With --insert, the transcript is appended to the given note instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		audio, err := os.Open(args[0])
		if err != nil {
			fatal("Error opening audio file", err)
		}
		defer audio.Close()

		ctx := context.Background()
		text, err := transcribe.Transcribe(ctx, transcribe.Config{
			APIKey: os.Getenv("GLADIA_API_KEY"),
			Logger: slog.Default(),
		}, audio)
		if err != nil {
			fatal("Error transcribing audio", err)
		}

		if transcribeInsert == "" {
			fmt.Println(text)
			return
		}

		svc := openService(true)
		ed, err := svc.Open(ctx, transcribeInsert, session.NewBuffer(""))
		if err != nil {
			fatal("Error opening note", err)
		}

		surface := ed.Session()
		surface.QueueInsertion(text, "transcript")
		surface.ApplyPendingInsertion()

		if err := ed.Close(ctx); err != nil {
			fatal("Error saving note", err)
		}
		fmt.Printf("Transcript inserted into note %s\n", transcribeInsert)
	},
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeCmd.Flags().StringVar(&transcribeInsert, "insert", "", "Note id to append the transcript to")
}
