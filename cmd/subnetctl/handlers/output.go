package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/imamik/subnetctl/internal/chain"
	"github.com/imamik/subnetctl/internal/orchestration"
	"github.com/imamik/subnetctl/internal/subnet"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Colors matching the status palette of the dashboard.
var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#eab308")
	colorRed    = lipgloss.Color("#ef4444")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	okStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	pendingStyle = lipgloss.NewStyle().Foreground(colorYellow)
	badStyle     = lipgloss.NewStyle().Foreground(colorRed)
)

func validateOutput(format string) error {
	switch format {
	case OutputText, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use text, json or yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	default:
		return validateOutput(format)
	}
}

// statusView is the structured form of the status command.
type statusView struct {
	Subnet *subnet.Subnet              `json:"subnet" yaml:"subnet"`
	Health *orchestration.HealthReport `json:"health,omitempty" yaml:"health,omitempty"`
}

func writeStatus(w io.Writer, format string, sn *subnet.Subnet, health *orchestration.HealthReport, now time.Time) error {
	if format != OutputText {
		return writeStructured(w, format, statusView{Subnet: sn, Health: health})
	}
	if sn == nil {
		_, err := fmt.Fprintln(w, dimStyle.Render("No active subnet."))
		return err
	}
	_, err := io.WriteString(w, renderSubnet(sn, health, now))
	return err
}

func writeSubnets(w io.Writer, format string, subnets []*subnet.Subnet, now time.Time) error {
	if format != OutputText {
		if subnets == nil {
			subnets = []*subnet.Subnet{}
		}
		return writeStructured(w, format, subnets)
	}
	_, err := io.WriteString(w, renderSubnets(subnets, now))
	return err
}

func writeBlocks(w io.Writer, format string, blocks []*chain.Block) error {
	if format != OutputText {
		if blocks == nil {
			blocks = []*chain.Block{}
		}
		return writeStructured(w, format, blocks)
	}
	_, err := io.WriteString(w, renderBlocks(blocks))
	return err
}

func statusStyle(s subnet.Status) lipgloss.Style {
	switch s {
	case subnet.StatusRunning:
		return okStyle
	case subnet.StatusDeleted:
		return dimStyle
	default:
		return pendingStyle
	}
}

// renderSubnet produces the text view of one subnet.
func renderSubnet(sn *subnet.Subnet, health *orchestration.HealthReport, now time.Time) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Subnet %s", sn.Label)))
	b.WriteString("  ")
	b.WriteString(statusStyle(sn.Status).Render(string(sn.Status)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 40)))
	b.WriteString("\n")

	row := func(key, value string) {
		if value == "" {
			value = dimStyle.Render("-")
		}
		fmt.Fprintf(&b, "  %-12s %s\n", key, value)
	}
	row("ID", sn.ID)
	row("Age", sn.Age(now).Truncate(time.Second).String())
	row("Instance", sn.Server.ProviderInstanceID)
	row("IP", sn.Server.IP)
	row("SSH user", sn.Server.SSHUsername)
	row("SSH key", sn.Server.SSHKeyName)
	row("RPC", sn.RPCEndpoint())
	row("Chain ID", fmt.Sprintf("%d", sn.Network.ChainID))
	row("Creator", sn.Creator.Address)

	if len(sn.Validators) > 0 {
		b.WriteString(sectionStyle.Render("Validators"))
		b.WriteString("\n")
		for _, v := range sn.Validators {
			ip := v.IP
			if ip == "" {
				ip = "pending"
			}
			fmt.Fprintf(&b, "  %-15s %s\n", ip, v.OwnerAddress)
		}
	}

	if health != nil {
		b.WriteString(sectionStyle.Render("Chain"))
		b.WriteString("\n")
		row("Block", fmt.Sprintf("%d", health.LatestBlock))
		chainID := okStyle.Render(fmt.Sprintf("%d", health.ChainID))
		if !health.ChainIDMatches {
			chainID = badStyle.Render(fmt.Sprintf("%d (expected %d)", health.ChainID, sn.Network.ChainID))
		}
		row("Chain ID", chainID)
		state := okStyle.Render("healthy")
		if !health.Healthy() {
			state = badStyle.Render("unhealthy")
		}
		row("State", state)
	}
	return b.String()
}

// renderSubnets produces one line per subnet, newest first.
func renderSubnets(subnets []*subnet.Subnet, now time.Time) string {
	if len(subnets) == 0 {
		return dimStyle.Render("No subnets recorded.") + "\n"
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("%-36s  %-10s  %-15s  %-10s  %s", "ID", "STATUS", "IP", "AGE", "LABEL")))
	b.WriteString("\n")
	for _, sn := range subnets {
		ip := sn.Server.IP
		if ip == "" {
			ip = "-"
		}
		status := statusStyle(sn.Status).Render(fmt.Sprintf("%-10s", sn.Status))
		fmt.Fprintf(&b, "%-36s  %s  %-15s  %-10s  %s\n",
			sn.ID, status, ip, sn.Age(now).Truncate(time.Second), sn.Label)
	}
	return b.String()
}

// renderBlocks produces one line per block, newest first.
func renderBlocks(blocks []*chain.Block) string {
	if len(blocks) == 0 {
		return dimStyle.Render("No blocks yet.") + "\n"
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("%-10s  %-20s  %-4s  %-12s  %s", "NUMBER", "TIME", "TXS", "GAS USED", "HASH")))
	b.WriteString("\n")
	for _, blk := range blocks {
		fmt.Fprintf(&b, "%-10d  %-20s  %-4d  %-12d  %s\n",
			blk.Number, blk.Time().Format(time.RFC3339), blk.TxCount, blk.GasUsed, blk.Hash.Hex())
	}
	return b.String()
}
