package client

import (
	"context"
	"fmt"

	"astrolink-client/protocol"
)

// Link 数据链路（遥测/遥控流的出入口）只读视图
type Link struct {
	msg protocol.LinkInfoMsg
}

// Instance 所属实例名
func (l *Link) Instance() string {
	return l.msg.Instance
}

// Name 链路名
func (l *Link) Name() string {
	return l.msg.Name
}

// Class 链路实现类型；第二个返回值表示服务器是否下发了该字段
func (l *Link) Class() (string, bool) {
	if l.msg.Type == nil {
		return "", false
	}
	return *l.msg.Type, true
}

// Enabled 链路是否启用（disabled 缺省按启用处理）
func (l *Link) Enabled() bool {
	return l.msg.Disabled == nil || !*l.msg.Disabled
}

// Status 链路运行状态（OK / UNAVAIL 等）
func (l *Link) Status() (string, bool) {
	if l.msg.Status == nil {
		return "", false
	}
	return *l.msg.Status, true
}

// DataInCount 入站计数（字段缺失时为 0）
func (l *Link) DataInCount() int64 {
	if l.msg.DataInCount == nil {
		return 0
	}
	return *l.msg.DataInCount
}

// DataOutCount 出站计数（字段缺失时为 0）
func (l *Link) DataOutCount() int64 {
	if l.msg.DataOutCount == nil {
		return 0
	}
	return *l.msg.DataOutCount
}

func (l *Link) String() string {
	status := "UNKNOWN"
	if s, ok := l.Status(); ok {
		status = s
	}
	return fmt.Sprintf("%s: %s (in: %d out: %d)", l.Name(), status, l.DataInCount(), l.DataOutCount())
}

// ListDataLinks 列出实例下的全部数据链路
func (c *Client) ListDataLinks(ctx context.Context, instance string) ([]*Link, error) {
	var response protocol.ListLinksResponseMsg
	if err := c.Get(ctx, "/links/"+instance, nil, &response); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	links := make([]*Link, 0, len(response.Link))
	for _, msg := range response.Link {
		links = append(links, &Link{msg: msg})
	}
	return links, nil
}

// GetDataLink 查询单条数据链路
func (c *Client) GetDataLink(ctx context.Context, instance, name string) (*Link, error) {
	var msg protocol.LinkInfoMsg
	if err := c.Get(ctx, "/links/"+instance+"/"+name, nil, &msg); err != nil {
		return nil, fmt.Errorf("get link %s: %w", name, err)
	}
	return &Link{msg: msg}, nil
}

// EnableDataLink 启用链路
func (c *Client) EnableDataLink(ctx context.Context, instance, name string) error {
	body := protocol.EditLinkRequestMsg{State: "enabled"}
	if err := c.Patch(ctx, "/links/"+instance+"/"+name, body, nil); err != nil {
		return fmt.Errorf("enable link %s: %w", name, err)
	}
	return nil
}

// DisableDataLink 停用链路
func (c *Client) DisableDataLink(ctx context.Context, instance, name string) error {
	body := protocol.EditLinkRequestMsg{State: "disabled"}
	if err := c.Patch(ctx, "/links/"+instance+"/"+name, body, nil); err != nil {
		return fmt.Errorf("disable link %s: %w", name, err)
	}
	return nil
}
