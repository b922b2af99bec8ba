package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPPublisher 以表单 POST 推送到实时服务
//
//	/room/<id>/update/  update_data=<aspects>
//	/room/<id>/join/    join_userID=<user>
//	/room/<id>/remove/  removed_userID=<user>
//	/user/<id>/
type HTTPPublisher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPublisher 创建 HTTP 投递实现
func NewHTTPPublisher(baseURL string, timeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// route 事件对应的路径与表单
func (p *HTTPPublisher) route(e Event) (string, url.Values, error) {
	form := url.Values{}
	switch e.Kind {
	case KindRoomUpdate:
		form.Set("update_data", e.Data)
		return fmt.Sprintf("%s/room/%s/update/", p.baseURL, e.RoomUuid), form, nil
	case KindUserJoined:
		form.Set("join_userID", e.UserUuid)
		return fmt.Sprintf("%s/room/%s/join/", p.baseURL, e.RoomUuid), form, nil
	case KindUserLeft:
		form.Set("removed_userID", e.UserUuid)
		return fmt.Sprintf("%s/room/%s/remove/", p.baseURL, e.RoomUuid), form, nil
	case KindUserPing:
		return fmt.Sprintf("%s/user/%s/", p.baseURL, e.UserUuid), form, nil
	}
	return "", nil, fmt.Errorf("unknown event kind %q", e.Kind)
}

func (p *HTTPPublisher) Publish(ctx context.Context, e Event) error {
	target, form, err := p.route(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notify %s: unexpected status %d", target, resp.StatusCode)
	}
	return nil
}

func (p *HTTPPublisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
