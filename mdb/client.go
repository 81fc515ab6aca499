// Package mdb 读取任务数据库（参数与容器定义）。
// 定义在服务器启动时装载，运行期只读；客户端不做本地缓存。
package mdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"astrolink-client/client"
	"astrolink-client/protocol"

	"go.uber.org/zap"
)

// Client 任务数据库客户端
type Client struct {
	client   *client.Client
	instance string
	logger   *zap.Logger
}

// NewClient 创建指定实例的任务数据库客户端
func NewClient(c *client.Client, instance string) *Client {
	return &Client{
		client:   c,
		instance: instance,
		logger:   c.Logger(),
	}
}

// ListParametersOptions 参数列表过滤条件
type ListParametersOptions struct {
	// ParameterType 只列该来源的参数（telemetered / derived / local 等）
	ParameterType string
	// PageSize 单页条数；0 用服务器默认
	PageSize int32
}

// ListParameters 列出实例的全部参数定义。
// 服务器按页下发，这里跟着 continuationToken 取完为止。
func (c *Client) ListParameters(ctx context.Context, opts ListParametersOptions) ([]*Parameter, error) {
	query := url.Values{}
	if opts.ParameterType != "" {
		query.Set("type", opts.ParameterType)
	}
	if opts.PageSize > 0 {
		query.Set("limit", strconv.FormatInt(int64(opts.PageSize), 10))
	}
	path := fmt.Sprintf("/mdb/%s/parameters", c.instance)

	var parameters []*Parameter
	for {
		var response protocol.ListParametersResponseMsg
		if err := c.client.Get(ctx, path, query, &response); err != nil {
			return nil, fmt.Errorf("list parameters: %w", err)
		}
		for i := range response.Parameters {
			parameters = append(parameters, newParameter(&response.Parameters[i]))
		}
		if response.ContinuationToken == nil {
			return parameters, nil
		}
		query.Set("next", *response.ContinuationToken)
	}
}

// GetParameter 取单个参数定义（完全限定名或 NAMESPACE/NAME 别名）
func (c *Client) GetParameter(ctx context.Context, name string) (*Parameter, error) {
	adapted, err := protocol.AdaptNameForREST(name)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/mdb/%s/parameters%s", c.instance, adapted)

	var msg protocol.ParameterInfoMsg
	if err := c.client.Get(ctx, path, nil, &msg); err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}
	return newParameter(&msg), nil
}

// ListContainersOptions 容器列表过滤条件
type ListContainersOptions struct {
	// PageSize 单页条数；0 用服务器默认
	PageSize int32
}

// ListContainers 列出实例的全部容器定义（分页取完）
func (c *Client) ListContainers(ctx context.Context, opts ListContainersOptions) ([]*Container, error) {
	query := url.Values{}
	if opts.PageSize > 0 {
		query.Set("limit", strconv.FormatInt(int64(opts.PageSize), 10))
	}
	path := fmt.Sprintf("/mdb/%s/containers", c.instance)

	var containers []*Container
	for {
		var response protocol.ListContainersResponseMsg
		if err := c.client.Get(ctx, path, query, &response); err != nil {
			return nil, fmt.Errorf("list containers: %w", err)
		}
		for i := range response.Containers {
			containers = append(containers, newContainer(&response.Containers[i]))
		}
		if response.ContinuationToken == nil {
			return containers, nil
		}
		query.Set("next", *response.ContinuationToken)
	}
}

// GetContainer 取单个容器定义（完全限定名或 NAMESPACE/NAME 别名）
func (c *Client) GetContainer(ctx context.Context, name string) (*Container, error) {
	adapted, err := protocol.AdaptNameForREST(name)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/mdb/%s/containers%s", c.instance, adapted)

	var msg protocol.ContainerInfoMsg
	if err := c.client.Get(ctx, path, nil, &msg); err != nil {
		return nil, fmt.Errorf("get container: %w", err)
	}
	return newContainer(&msg), nil
}
