package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dkeye/viewing/internal/client/host"
	"github.com/dkeye/viewing/internal/client/rtc"
	"github.com/dkeye/viewing/internal/client/ui"
	"github.com/dkeye/viewing/internal/domain"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a viewing",
	Long: `Acquires the camera and microphone and opens the session for viewers.

Each input line is sent as a chat message. Commands:
  /end [reason]     end the viewing for everyone
  /record on|off    announce that recording started or stopped
  /roster           show who is in the viewing
  /history          show the chat so far`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		ctrl := host.New(host.Config{
			SessionID: domain.SessionID(viper.GetString(sessionKey)),
			Name:      viper.GetString(nameKey),
			Channel:   rt.channel,
			Media:     rt.acquirer,
			NewPeers: host.RTCPeersFactory(rtc.ManagerConfig{
				API:           rt.api,
				Configuration: rt.config,
				Surface:       rt.surface,
				Logger:        rt.logger,
			}),
			UI:     rt.view(),
			Logger: rt.logger,
		})
		go hostInput(ctx, rt.console, ctrl)

		err = ctrl.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func hostInput(ctx context.Context, console *ui.Console, ctrl *host.Controller) {
	lines := console.Lines()
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return
		case line, ok = <-lines:
			if !ok {
				return
			}
		}
		line = strings.TrimSpace(line)
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "":
		case "/end":
			ctrl.End(strings.TrimSpace(arg))
			return
		case "/record":
			if err := ctrl.SetRecording(arg == "on"); err != nil {
				console.Toast(ui.Warning, "Recording not changed: "+err.Error())
			}
		case "/roster":
			console.ShowRoster("", ctrl.Roster())
		case "/history":
			for _, msg := range ctrl.ChatHistory() {
				console.ShowChat(msg)
			}
		default:
			if err := ctrl.SendChat(line); err != nil {
				console.Toast(ui.Warning, "Message not sent: "+err.Error())
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(hostCmd)
}
