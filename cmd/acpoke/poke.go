package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/usecase"
)

var pokeFlags struct {
	groupID  string
	senderID string
	replyID  string
	mode     string
	reason   string
}

var pokeCmd = &cobra.Command{
	Use:   "poke <target>",
	Short: "Poke someone once",
	Long: `Resolves target (QQ number, known name, or 我/me with --sender) and sends one poke.

Example:
  acpoke poke 123456 --group 987654 --reason "say hi"`,
	Args: cobra.ExactArgs(1),
	RunE: runPoke,
}

func init() {
	pokeCmd.Flags().StringVarP(&pokeFlags.groupID, "group", "g", "", "group ID (friend poke when empty)")
	pokeCmd.Flags().StringVarP(&pokeFlags.senderID, "sender", "s", "", "QQ number the self aliases resolve to")
	pokeCmd.Flags().StringVar(&pokeFlags.replyID, "reply", "", "message ID to reply to")
	pokeCmd.Flags().StringVar(&pokeFlags.mode, "mode", string(domain.PokeModeActive), "poke mode: 主动 or 被动")
	pokeCmd.Flags().StringVarP(&pokeFlags.reason, "reason", "r", "", "reason recorded with the poke")
}

func runPoke(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.poke.Execute(cmd.Context(), &usecase.PokeRequest{
		Target:   args[0],
		GroupID:  pokeFlags.groupID,
		ReplyID:  pokeFlags.replyID,
		PokeMode: pokeFlags.mode,
		Reason:   pokeFlags.reason,
		Context:  domain.InvocationContext{SenderID: pokeFlags.senderID},
	})

	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	if result.Status == domain.StatusFailed {
		return fmt.Errorf("poke %s: %w", args[0], result.Err)
	}
	return nil
}
