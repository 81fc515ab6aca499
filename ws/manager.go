package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"astrolink-client/client"
	"astrolink-client/protocol"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 订阅传输层：每个订阅独占一条 WebSocket 连接。
// 单一读协程顺序解码、顺序分发，保证同一订阅内的消息到达顺序。

// ErrSubscriptionTimeout 服务器未在时限内确认订阅
var ErrSubscriptionTimeout = errors.New("timed out waiting for subscription confirmation")

// ErrSubscriptionClosed 订阅已关闭，不能再发送
var ErrSubscriptionClosed = errors.New("subscription closed")

// SubscriptionError 服务器拒绝了订阅请求（EXCEPTION 回复）
type SubscriptionError struct {
	Type    string
	Message string
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription rejected: %s (%s)", e.Message, e.Type)
}

// DataFunc 数据分发回调，由读协程顺序调用
type DataFunc func(*protocol.WebSocketData)

// Options 订阅建立参数
type Options struct {
	// Resource 服务器侧资源名（parameter / cmdhistory / alarms）
	Resource string
	// RequestData 首条 subscribe 请求的载荷，可为 nil
	RequestData interface{}
	// OnData 数据回调
	OnData DataFunc
	// Timeout 等待服务器确认的时限，<=0 取 10s
	Timeout time.Duration
	// Logger 可为 nil
	Logger *zap.Logger
}

const (
	defaultReplyTimeout = 10 * time.Second
	pingInterval        = 10 * time.Second
	writeTimeout        = 10 * time.Second
)

type replyResult struct {
	reply     json.RawMessage
	exception *protocol.RESTExceptionMsg
}

// Subscription 一条活跃订阅
type Subscription struct {
	conn     *websocket.Conn
	resource string
	logger   *zap.Logger
	onData   DataFunc

	requestID atomic.Int64

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan replyResult

	stop     context.CancelFunc
	canceled atomic.Bool
	done     chan struct{}

	errMu sync.Mutex
	err   error

	reply json.RawMessage
}

// Open 建立订阅：拨号、发 subscribe、等服务器确认。
// 返回前订阅要么就绪要么失败，不存在半初始化状态。
// 拨号失败返回 *client.ConnectionError；确认超时返回 ErrSubscriptionTimeout；
// 服务器拒绝返回 *SubscriptionError。
func Open(ctx context.Context, wsURL string, opts Options) (*Subscription, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultReplyTimeout
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, &client.ConnectionError{Address: wsURL, Err: err}
	}

	s := &Subscription{
		conn:     conn,
		resource: opts.Resource,
		logger:   logger,
		onData:   opts.OnData,
		pending:  make(map[int64]chan replyResult),
		done:     make(chan struct{}),
	}
	s.start()

	replyCh, requestID := s.registerReply()
	request := protocol.WebSocketRequest{
		RequestID: requestID,
		Resource:  opts.Resource,
		Operation: "subscribe",
		Data:      opts.RequestData,
	}
	if err := s.write(request); err != nil {
		s.Cancel()
		return nil, &client.ConnectionError{Address: wsURL, Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case result := <-replyCh:
		if result.exception != nil {
			s.Cancel()
			return nil, &SubscriptionError{Type: result.exception.Type, Message: result.exception.Msg}
		}
		s.reply = result.reply
		return s, nil
	case <-timer.C:
		s.Cancel()
		return nil, ErrSubscriptionTimeout
	case <-s.done:
		terminal := s.Err()
		if terminal == nil {
			terminal = ErrSubscriptionClosed
		}
		return nil, &client.ConnectionError{Address: wsURL, Err: terminal}
	}
}

// start 启动读协程与心跳协程
func (s *Subscription) start() {
	runCtx, cancel := context.WithCancel(context.Background())
	s.stop = cancel

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(s.readLoop)
	group.Go(func() error { return s.pingLoop(groupCtx) })

	// 协程组上下文一结束就强制断连：心跳协程先出错时，
	// 阻塞在 ReadJSON 里的读协程只能靠关连接解除
	go func() {
		<-groupCtx.Done()
		s.conn.Close()
	}()

	go func() {
		err := group.Wait()
		s.conn.Close()
		if err != nil {
			s.errMu.Lock()
			s.err = err
			s.errMu.Unlock()
		}
		close(s.done)
	}()
}

// readLoop 唯一的读协程：顺序解码、顺序分发
func (s *Subscription) readLoop() error {
	for {
		var msg protocol.WebSocketServerMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if s.canceled.Load() {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		switch msg.Type {
		case protocol.MessageTypeReply:
			s.resolveReply(msg, replyResult{reply: msg.Reply})
		case protocol.MessageTypeException:
			if msg.ReplyTo != nil {
				s.resolveReply(msg, replyResult{exception: msg.Exception})
				continue
			}
			// 无 replyTo 的异常是终止性的
			if msg.Exception != nil {
				return &SubscriptionError{Type: msg.Exception.Type, Message: msg.Exception.Msg}
			}
			return fmt.Errorf("server exception without detail")
		case protocol.MessageTypeData:
			if s.onData != nil && msg.Data != nil {
				s.onData(msg.Data)
			}
		default:
			s.logger.Debug("Ignoring unknown websocket message type",
				zap.String("type", msg.Type),
			)
		}
	}
}

// pingLoop 定期发心跳，维持空闲连接
func (s *Subscription) pingLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			s.writeMu.Unlock()
			if err != nil {
				if s.canceled.Load() {
					return nil
				}
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

func (s *Subscription) registerReply() (chan replyResult, int64) {
	requestID := s.requestID.Add(1)
	ch := make(chan replyResult, 1)
	s.pendingMu.Lock()
	s.pending[requestID] = ch
	s.pendingMu.Unlock()
	return ch, requestID
}

func (s *Subscription) resolveReply(msg protocol.WebSocketServerMessage, result replyResult) {
	if msg.ReplyTo == nil {
		s.logger.Debug("Reply without replyTo, dropping")
		return
	}
	s.pendingMu.Lock()
	ch, ok := s.pending[*msg.ReplyTo]
	if ok {
		delete(s.pending, *msg.ReplyTo)
	}
	s.pendingMu.Unlock()
	if ok {
		ch <- result
	} else {
		s.logger.Debug("Reply for unknown request, dropping",
			zap.Int64("reply_to", *msg.ReplyTo),
		)
	}
}

func (s *Subscription) write(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

// Reply 服务器对初始 subscribe 的确认载荷（原始 JSON，调用方自行解码）
func (s *Subscription) Reply() json.RawMessage {
	return s.reply
}

// Send 在已建立的订阅上追加请求（subscribe / unsubscribe 增量）。
// 只负责发送，不等待服务器回复。
func (s *Subscription) Send(operation string, data interface{}) error {
	if s.canceled.Load() {
		return ErrSubscriptionClosed
	}
	select {
	case <-s.done:
		return ErrSubscriptionClosed
	default:
	}
	requestID := s.requestID.Add(1)
	request := protocol.WebSocketRequest{
		RequestID: requestID,
		Resource:  s.resource,
		Operation: operation,
		Data:      data,
	}
	if err := s.write(request); err != nil {
		return fmt.Errorf("send %s: %w", operation, err)
	}
	return nil
}

// Cancel 关闭订阅。已经进入回调的消息会执行完，之后不再有分发。
// 幂等，可并发调用。
func (s *Subscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		s.stop()
		s.conn.Close()
	}
}

// Done 订阅终止后关闭
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err 终止原因；主动 Cancel 返回 nil
func (s *Subscription) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}
