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

	"github.com/dkeye/viewing/internal/client/rtc"
	"github.com/dkeye/viewing/internal/client/ui"
	"github.com/dkeye/viewing/internal/client/viewer"
	"github.com/dkeye/viewing/internal/domain"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a viewing as a viewer",
	Long: `Acquires the camera and microphone, asks for confirmation and joins the session.

While joined, each input line is sent as a chat message. Commands:
  /leave            leave the viewing
  /roster           show who is in the viewing
  /history          show the chat so far
  /mic on|off       toggle the microphone
  /camera on|off    toggle the camera`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		var userID *string
		if id := viper.GetString(userIDKey); id != "" {
			userID = &id
		}
		gate := newConfirmGate(rt.view())
		ctrl := viewer.New(viewer.Config{
			SessionID: domain.SessionID(viper.GetString(sessionKey)),
			UserID:    userID,
			Name:      viper.GetString(nameKey),
			Channel:   rt.channel,
			Media:     rt.acquirer,
			NewPeer: viewer.RTCPeerFactory(rtc.PeerConfig{
				API:           rt.api,
				Configuration: rt.config,
				Surface:       rt.surface,
				Logger:        rt.logger,
			}),
			UI:     gate,
			Logger: rt.logger,
		})

		go func() {
			select {
			case <-ctx.Done():
				return
			case <-gate.done:
			}
			viewerInput(ctx, rt.console, ctrl)
		}()

		err = ctrl.Run(ctx)
		if errors.Is(err, viewer.ErrCancelled) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func viewerInput(ctx context.Context, console *ui.Console, ctrl *viewer.Controller) {
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
		case "/leave":
			ctrl.Leave()
			return
		case "/roster":
			host, participants := ctrl.Roster()
			console.ShowRoster(host, participants)
		case "/history":
			for _, msg := range ctrl.ChatHistory() {
				console.ShowChat(msg)
			}
		case "/mic":
			if acq := ctrl.Acquisition(); acq == nil || !acq.SetAudioEnabled(arg == "on") {
				console.Toast(ui.Warning, "No microphone was acquired")
			}
		case "/camera":
			if acq := ctrl.Acquisition(); acq == nil || !acq.SetVideoEnabled(arg == "on") {
				console.Toast(ui.Warning, "No camera was acquired")
			}
		default:
			if err := ctrl.SendChat(line); err != nil {
				console.Toast(ui.Warning, "Message not sent: "+err.Error())
			}
		}
	}
}

func init() {
	joinCmd.Flags().String("user-id", "", "account id used to look up the display name")
	viper.BindPFlag(userIDKey, joinCmd.Flags().Lookup("user-id"))
	rootCmd.AddCommand(joinCmd)
}
