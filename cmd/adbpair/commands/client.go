package commands

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/backkem/adbpair/pkg/discovery"
	"github.com/backkem/adbpair/pkg/pairing"
)

// client <code>: pair with a server.
func clientCmd() *cobra.Command {
	var (
		address string
		guid    string
	)

	cmd := &cobra.Command{
		Use:   "client <code>",
		Short: "Pair with a server using a pairing code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if code == "" {
				return fmt.Errorf("pairing code must not be empty")
			}
			if guid == "" {
				g, err := generateGUID()
				if err != nil {
					return err
				}
				guid = g
			}
			return runClient(address, code, guid)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "server host:port (discovered over mDNS if empty)")
	cmd.Flags().StringVar(&guid, "guid", "", "GUID sent to the peer (generated if empty)")

	return cmd
}

func runClient(address, code, guid string) error {
	if address == "" {
		resolver, err := discovery.NewResolver(discovery.ResolverConfig{})
		if err != nil {
			return err
		}

		fmt.Printf("browsing for %s ...\n", discovery.ServicePairing)
		svc, err := resolver.DiscoverPairing(context.Background())
		if err != nil {
			return fmt.Errorf("no pairing endpoint found: %w", err)
		}
		address = svc.Addr()
		if address == "" {
			return fmt.Errorf("discovered %q but it has no dialable address", svc.InstanceName)
		}
		fmt.Printf("found %q at %s\n", svc.InstanceName, address)
	}

	conn, err := net.Dial("tcp", address)
	if err != nil {
		return err
	}

	pc, err := pairing.NewClientConnection(conn, pairing.Config{
		Password: []byte(code),
		PeerInfo: pairing.PeerInfo{
			Type: pairing.PeerInfoDeviceGUID,
			Data: []byte(guid),
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

	fmt.Printf("paired with %s: %s %q\n", address, peer.Type, peer.Data)
	return nil
}
