package commands

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/backkem/adbpair/pkg/discovery"
	"github.com/backkem/adbpair/pkg/pairing"
)

// serverConfig holds the server settings, loadable from a YAML file.
type serverConfig struct {
	// Listen is the TCP address to accept the pairing connection on.
	Listen string `yaml:"listen"`

	// Code is the pairing code. Generated and printed if empty.
	Code string `yaml:"code"`

	// Name is the device name advertised in the mDNS TXT record.
	Name string `yaml:"name"`

	// GUID identifies this device to the peer. Generated if empty.
	GUID string `yaml:"guid"`

	// Advertise enables mDNS advertising of the pairing endpoint.
	Advertise bool `yaml:"advertise"`
}

// server: accept one pairing attempt.
func serverCmd() *cobra.Command {
	cfg := serverConfig{Listen: ":0"}
	var configFile string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Listen for one pairing attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				data, err := os.ReadFile(configFile)
				if err != nil {
					return err
				}
				if err := yaml.Unmarshal(data, &cfg); err != nil {
					return fmt.Errorf("config %s: %w", configFile, err)
				}
			}
			return runServer(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Listen, "listen", cfg.Listen, "TCP address to listen on")
	cmd.Flags().StringVar(&cfg.Code, "code", "", "pairing code (generated if empty)")
	cmd.Flags().StringVar(&cfg.Name, "name", "", "device name to advertise")
	cmd.Flags().StringVar(&cfg.GUID, "guid", "", "device GUID sent to the peer (generated if empty)")
	cmd.Flags().BoolVar(&cfg.Advertise, "advertise", false, "advertise the pairing endpoint over mDNS")
	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file (flags override)")

	return cmd
}

func runServer(cfg serverConfig) error {
	if cfg.Code == "" {
		code, err := generatePairingCode()
		if err != nil {
			return err
		}
		cfg.Code = code
	}
	if cfg.GUID == "" {
		guid, err := generateGUID()
		if err != nil {
			return err
		}
		cfg.GUID = guid
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Printf("listening on %s\n", listener.Addr())
	fmt.Printf("pairing code: %s\n", cfg.Code)

	if cfg.Advertise {
		adv, err := discovery.NewAdvertiser(discovery.AdvertiserConfig{
			InstanceName:  cfg.GUID,
			Port:          port,
			LoggerFactory: loggerFactory,
		})
		if err != nil {
			return err
		}
		defer adv.Close()

		if err := adv.StartPairing(discovery.PairingTXT{Name: cfg.Name}); err != nil {
			return err
		}
		fmt.Printf("advertising %s as %q\n", discovery.ServicePairing, adv.InstanceName(discovery.ServiceTypePairing))

		if addrs, err := discovery.GetLocalAddresses(); err == nil && len(addrs) > 0 {
			fmt.Printf("reachable at %s\n", net.JoinHostPort(addrs[0].String(), strconv.Itoa(port)))
		}
	}

	conn, err := listener.Accept()
	if err != nil {
		return err
	}

	pc, err := pairing.NewServerConnection(conn, pairing.Config{
		Password: []byte(cfg.Code),
		PeerInfo: pairing.PeerInfo{
			Type: pairing.PeerInfoDeviceGUID,
			Data: []byte(cfg.GUID),
		},
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		conn.Close()
		return err
	}
	defer pc.Close()

	peer, err := pc.Pair()
	if err != nil {
		return fmt.Errorf("pairing failed: %w", err)
	}

	fmt.Printf("paired with %s: %s %q\n", conn.RemoteAddr(), peer.Type, peer.Data)
	return nil
}

// generatePairingCode returns a 6-digit pairing code, the format the
// wireless-debugging dialog shows.
func generatePairingCode() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(buf[:])%1000000), nil
}

// generateGUID returns a device GUID in the "adb-" + 16 hex form.
func generateGUID() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("adb-%016X", binary.BigEndian.Uint64(buf[:])), nil
}
