package notify

import (
	"context"
	"encoding/json"
	"fmt"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi "github.com/alibabacloud-go/dysmsapi-20170525/v5/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	appfulfillment "github.com/shopdesk/backend/internal/application/fulfillment"
	"github.com/shopdesk/backend/internal/infrastructure/config"
)

const defaultSMSEndpoint = "dysmsapi.aliyuncs.com"

type smsClient interface {
	SendSmsWithOptions(request *dysmsapi.SendSmsRequest, runtime *util.RuntimeOptions) (*dysmsapi.SendSmsResponse, error)
}

// SMSSink sends notifications through Aliyun SMS using a single template
// with "subject" and "body" parameters.
type SMSSink struct {
	client       smsClient
	signName     string
	templateCode string
}

// NewSMSSink creates an Aliyun SMS client from cfg
func NewSMSSink(cfg config.SMSConfig) (*SMSSink, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultSMSEndpoint
	}
	client, err := dysmsapi.NewClient(&openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		Endpoint:        tea.String(endpoint),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SMS client: %w", err)
	}
	return newSMSSink(client, cfg.SignName, cfg.TemplateCode), nil
}

func newSMSSink(client smsClient, signName, templateCode string) *SMSSink {
	return &SMSSink{client: client, signName: signName, templateCode: templateCode}
}

// Name returns "sms"
func (s *SMSSink) Name() string { return "sms" }

// Send texts the notification. Customers without a phone number are skipped.
func (s *SMSSink) Send(ctx context.Context, n appfulfillment.Notification) error {
	if n.Recipient.Phone == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params, err := json.Marshal(map[string]string{"subject": n.Subject, "body": n.Body})
	if err != nil {
		return fmt.Errorf("encode template params: %w", err)
	}
	req := &dysmsapi.SendSmsRequest{
		PhoneNumbers:  tea.String(n.Recipient.Phone),
		SignName:      tea.String(s.signName),
		TemplateCode:  tea.String(s.templateCode),
		TemplateParam: tea.String(string(params)),
		OutId:         tea.String(n.EventID.String()),
	}

	resp, err := s.client.SendSmsWithOptions(req, &util.RuntimeOptions{})
	if err != nil {
		if sdkErr, ok := err.(*tea.SDKError); ok {
			return fmt.Errorf("send sms: %s", tea.StringValue(sdkErr.Message))
		}
		return fmt.Errorf("send sms: %w", err)
	}
	if resp == nil || resp.Body == nil {
		return fmt.Errorf("send sms: empty response")
	}
	if code := tea.StringValue(resp.Body.Code); code != "OK" {
		return fmt.Errorf("send sms rejected: %s: %s", code, tea.StringValue(resp.Body.Message))
	}
	return nil
}

var _ appfulfillment.NotificationSink = (*SMSSink)(nil)
