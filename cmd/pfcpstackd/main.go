// Command pfcpstackd bootstraps a PFCP control-plane runtime from a
// configuration file and binds it to a local address. It carries no
// business logic of its own: the handler it installs only logs every
// event the runtime surfaces, per spec.md §1's "host CLI ... out of
// scope" — a real deployment supplies its own application.Handler.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/omec-project/pfcpstack/internal/application"
	"github.com/omec-project/pfcpstack/internal/communication"
	"github.com/omec-project/pfcpstack/internal/config"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/translation"
	"github.com/omec-project/pfcpstack/internal/translator"
	"github.com/omec-project/pfcpstack/pkg/pfcpstack"
)

var (
	version string = "0.1.0"
	cfgFile string
	bindIP  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "pfcpstackd",
		Short:   "PFCP control-plane runtime",
		Long:    "Bootstraps the Communication/Translation/Application stage pipeline and binds it to a local address.",
		Version: version,
		RunE:    run,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "Configuration file path (default: config.yaml)")
	rootCmd.Flags().StringVar(&bindIP, "bind", "0.0.0.0", "Local IP address to bind")
	rootCmd.Flags().Int("port", 0, "UDP port (overrides config file)")
	rootCmd.Flags().String("log-level", "", "Log level (debug|info|warn|error)")

	v := viper.New()
	bindFlag(v, rootCmd, "port", "port")
	bindFlag(v, rootCmd, "log-level", "logging.level")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, flagName, configKey string) {
	_ = v.BindPFlag(configKey, cmd.Flags().Lookup(flagName))
}

func run(cmd *cobra.Command, args []string) error {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("no config file found, using defaults and CLI flags")
	}

	if cmd.Flags().Changed("port") {
		p, _ := cmd.Flags().GetInt("port")
		v.Set("port", p)
	}
	if cmd.Flags().Changed("log-level") {
		lvl, _ := cmd.Flags().GetString("log-level")
		v.Set("logging.level", lvl)
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg)

	ip := net.ParseIP(bindIP)
	if ip == nil {
		return fmt.Errorf("invalid --bind address %q", bindIP)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("received shutdown signal")
		cancel()
	}()

	stack, err := pfcpstack.New(cfg, translator.NewWmnskTranslator(), &loggingHandler{})
	if err != nil {
		return fmt.Errorf("failed to build stack: %w", err)
	}

	stack.Start(ctx)

	local, err := stack.CreateLocalNode(ctx, ip)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", ip, err)
	}
	log.WithFields(log.Fields{"address": local.Address, "port": cfg.Port}).Info("pfcpstackd bound")

	err = stack.Wait()
	if err != nil && ctx.Err() == nil {
		log.WithError(err).Error("stage exited unexpectedly")
		return err
	}
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
}

// loggingHandler is the default application.Handler installed by this
// bootstrap: it has no business logic, only structured logging of
// every event, so operators can see the runtime working before wiring
// in a real application.
type loggingHandler struct {
	application.BaseHandler
}

func (loggingHandler) OnRcvdReq(ev translation.RcvdReq) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "type": ev.Msg.Type}).Info("received request")
}

func (loggingHandler) OnRcvdRsp(ev translation.RcvdRsp) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "type": ev.Msg.Type}).Info("received response")
}

func (loggingHandler) OnReqTimeout(ev communication.ReqTimeout) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "type": ev.Msg.Type}).Warn("request timed out")
}

func (loggingHandler) OnLocalNodeStateChange(ev pfcpnode.LocalNodeStateChange) {
	log.WithFields(log.Fields{"local": ev.Local.Address, "previous": ev.Previous, "current": ev.Current}).Info("local node state change")
}

func (loggingHandler) OnRemoteNodeStateChange(ev pfcpnode.RemoteNodeStateChange) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "previous": ev.Previous, "current": ev.Current}).Info("remote node state change")
}

func (loggingHandler) OnRemoteNodeRestart(ev pfcpnode.RemoteNodeRestart) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "new_start_at": ev.NewStartAt}).Warn("remote node restarted")
}

func (loggingHandler) OnSndReqError(ev communication.SndReqError) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "err": ev.Err}).Error("send request failed")
}

func (loggingHandler) OnSndRspError(ev communication.SndRspError) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "err": ev.Err}).Error("send response failed")
}

func (loggingHandler) OnEncodeReqError(ev translation.EncodeReqError) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "err": ev.Err}).Error("encode request failed")
}

func (loggingHandler) OnEncodeRspError(ev translation.EncodeRspError) {
	log.WithFields(log.Fields{"remote": ev.Remote.Address, "err": ev.Err}).Error("encode response failed")
}

var _ application.Handler = loggingHandler{}
