package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/config"
	"github.com/trigoo007/cagcore/pkg/kernel"
	"github.com/trigoo007/cagcore/pkg/logx"
)

var (
	sendConversationID string
	sendUserID         string
	sendResponse       string
)

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Run one conversation turn through the context pipeline and print the resulting context map",
	Args:  cobra.ExactArgs(1),
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendConversationID, "conversation", "demo", "conversation id")
	sendCmd.Flags().StringVar(&sendUserID, "user", "demo-user", "user id")
	sendCmd.Flags().StringVar(&sendResponse, "response", "", "bot response to this message, if already known (records it into memory)")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	c, err := NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Cleanup()

	convID := kernel.NewConversationID(sendConversationID)
	userID := kernel.NewUserID(sendUserID)
	message := args[0]

	cm, err := c.Manager.ProcessMessage(ctx, convID, userID, message)
	if err != nil {
		return fmt.Errorf("process message: %w", err)
	}

	if err := c.Conversations.AppendMessage(ctx, convID, types.ConversationMessage{Role: "user", Content: message, Timestamp: time.Now()}); err != nil {
		logx.Warnf("recording user turn: %v", err)
	}

	if sendResponse != "" {
		cm, err = c.Manager.ProcessResponse(ctx, convID, userID, cm, message, sendResponse)
		if err != nil {
			return fmt.Errorf("process response: %w", err)
		}
		if err := c.Conversations.AppendMessage(ctx, convID, types.ConversationMessage{Role: "assistant", Content: sendResponse, Timestamp: time.Now()}); err != nil {
			logx.Warnf("recording assistant turn: %v", err)
		}
	}

	out, err := json.MarshalIndent(cm, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
