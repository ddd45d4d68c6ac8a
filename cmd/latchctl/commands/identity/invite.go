package identity

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latchhq/latch/cmd/latchctl/cmdutil"
	"github.com/latchhq/latch/pkg/apiclient"
)

var (
	inviteDisplayName  string
	inviteChannel      string
	inviteCapabilities string
	inviteExpiresIn    int64
	inviteLabel        string
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite a collaborator",
	Long: `Create a pending identity and a single-use claim token for it.

Share the token ID with the collaborator. When they claim it they receive
their own API key and the granted channel capabilities.

Examples:
  # Invite alice to read and append on a channel
  latchctl identity invite --display-name alice --channel ch_abc --capabilities read,append

  # Invite with a one hour expiry and a label
  latchctl identity invite --display-name bob --channel ch_abc --capabilities read --expires-in 3600 --label "bob invite"`,
	RunE: runInvite,
}

func init() {
	inviteCmd.Flags().StringVar(&inviteDisplayName, "display-name", "", "Display name for the invited identity (required)")
	inviteCmd.Flags().StringVar(&inviteChannel, "channel", "", "Channel ID to grant capabilities on (required)")
	inviteCmd.Flags().StringVar(&inviteCapabilities, "capabilities", "read", "Comma-separated capabilities (read,append,delete)")
	inviteCmd.Flags().Int64Var(&inviteExpiresIn, "expires-in", 0, "Token lifetime in seconds (default: server default)")
	inviteCmd.Flags().StringVar(&inviteLabel, "label", "", "Label for the claim token")
	_ = inviteCmd.MarkFlagRequired("display-name")
	_ = inviteCmd.MarkFlagRequired("channel")
}

func runInvite(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.Invite(apiclient.InviteRequest{
		DisplayName:      inviteDisplayName,
		ChannelID:        inviteChannel,
		Capabilities:     cmdutil.ParseCommaSeparatedList(inviteCapabilities),
		ExpiresInSeconds: inviteExpiresIn,
		Label:            inviteLabel,
	})
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	return cmdutil.PrintResourceWithDetails(os.Stdout, resp,
		fmt.Sprintf("Invite created for '%s'", inviteDisplayName),
		fmt.Sprintf("  Identity:  %s", resp.IdentityID),
		fmt.Sprintf("  Token:     %s", resp.TokenID),
		fmt.Sprintf("  Expires:   %s", resp.ExpiresAt),
		"",
		"Share the token ID. The collaborator claims it with:",
		fmt.Sprintf("  latchctl token claim %s", resp.TokenID))
}
