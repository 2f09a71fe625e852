package firewall

import (
	"github.com/google/nftables"
	"github.com/google/nftables/binaryutil"
	"github.com/google/nftables/expr"
	"golang.org/x/sys/unix"

	apperrors "sitedeploy/internal/errors"
	"sitedeploy/internal/logger"
)

const (
	tableName = "sitedeploy"
	chainName = "input"
)

// Opener opens inbound web ports in the host nftables ruleset. Hosts without
// an active firewall are unaffected; the accept rules are harmless there.
type Opener struct {
	logger logger.Logger
}

// NewOpener constructs an Opener.
func NewOpener(log logger.Logger) *Opener {
	return &Opener{logger: log}
}

// EnsureWebPorts installs accept rules for TCP 80 and 443 in a dedicated
// table. Failures are enhancement warnings; the deployment proceeds and the
// operator adjusts the firewall manually.
func (o *Opener) EnsureWebPorts() error {
	conn, err := nftables.New()
	if err != nil {
		return fwWarning("failed to open a netlink connection to nftables", err)
	}

	table := conn.AddTable(&nftables.Table{
		Family: nftables.TableFamilyINet,
		Name:   tableName,
	})

	policy := nftables.ChainPolicyAccept
	chain := conn.AddChain(&nftables.Chain{
		Name:     chainName,
		Table:    table,
		Type:     nftables.ChainTypeFilter,
		Hooknum:  nftables.ChainHookInput,
		Priority: nftables.ChainPriorityFilter,
		Policy:   &policy,
	})

	conn.FlushChain(chain)
	for _, port := range []uint16{80, 443} {
		conn.AddRule(&nftables.Rule{
			Table: table,
			Chain: chain,
			Exprs: acceptTCPPort(port),
		})
	}

	if err := conn.Flush(); err != nil {
		return fwWarning("failed to commit web port rules", err).
			WithHint("open the ports manually, e.g.: nft add rule inet filter input tcp dport {80, 443} accept")
	}

	o.logger.Info("Firewall accepts TCP 80 and 443")
	return nil
}

// acceptTCPPort matches tcp dport <port> and accepts.
func acceptTCPPort(port uint16) []expr.Any {
	return []expr.Any{
		&expr.Meta{Key: expr.MetaKeyL4PROTO, Register: 1},
		&expr.Cmp{
			Op:       expr.CmpOpEq,
			Register: 1,
			Data:     []byte{unix.IPPROTO_TCP},
		},
		&expr.Payload{
			DestRegister: 1,
			Base:         expr.PayloadBaseTransportHeader,
			Offset:       2,
			Len:          2,
		},
		&expr.Cmp{
			Op:       expr.CmpOpEq,
			Register: 1,
			Data:     binaryutil.BigEndian.PutUint16(port),
		},
		&expr.Verdict{Kind: expr.VerdictAccept},
	}
}

func fwWarning(message string, err error) *apperrors.AppError {
	return apperrors.EnhancementWarning(apperrors.CodeEnhancementFw, message, err).
		WithModule("firewall")
}
