package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sanma/common/config"
	"sanma/common/log"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Server 注册到 etcd 的节点信息
type Server struct {
	Name    string `json:"name"`
	Addr    string `json:"addr"`
	Version string `json:"version"`
	Weight  int    `json:"weight"`
	Ttl     int    `json:"ttl"`
}

func (s Server) buildKey() string {
	return fmt.Sprintf("/server/%s/%s", s.Name, s.Addr)
}

// Register etcd 注册器：节点注册 + 租约续期
// 单机部署可以不配置 etcd，此时 Register 不启动
type Register struct {
	etcdCli     *clientv3.Client
	leaseID     clientv3.LeaseID
	DialTimeout int
	keepAliveCh <-chan *clientv3.LeaseKeepAliveResponse
	info        Server
	closeCh     chan struct{}
}

func NewRegister() *Register {
	return &Register{
		DialTimeout: 3,
	}
}

func (r *Register) Register(conf config.EtcdConf) error {
	r.info = Server{
		Name:    conf.Register.Name,
		Addr:    conf.Register.Addr,
		Version: conf.Register.Version,
		Weight:  conf.Register.Weight,
		Ttl:     conf.Register.Ttl,
	}
	if r.info.Ttl <= 0 {
		r.info.Ttl = 10
	}
	if conf.DialTimeout > 0 {
		r.DialTimeout = conf.DialTimeout
	}

	var err error
	r.etcdCli, err = clientv3.New(clientv3.Config{
		Endpoints:   conf.Addrs,
		DialTimeout: time.Duration(r.DialTimeout) * time.Second,
	})
	if err != nil {
		return err
	}

	if err = r.register(); err != nil {
		return err
	}

	r.closeCh = make(chan struct{})
	go r.watch()
	return nil
}

func (r *Register) register() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.DialTimeout)*time.Second)
	defer cancel()

	lease, err := r.etcdCli.Grant(ctx, int64(r.info.Ttl))
	if err != nil {
		return err
	}
	r.leaseID = lease.ID

	r.keepAliveCh, err = r.etcdCli.KeepAlive(context.Background(), r.leaseID)
	if err != nil {
		return err
	}

	data, _ := json.Marshal(r.info)
	_, err = r.etcdCli.Put(ctx, r.info.buildKey(), string(data), clientv3.WithLease(r.leaseID))
	return err
}

func (r *Register) watch() {
	ticker := time.NewTicker(time.Duration(r.info.Ttl) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case res := <-r.keepAliveCh:
			if res == nil {
				// 租约失效，重新注册
				if err := r.register(); err != nil {
					log.Error("etcd 重新注册失败: %v", err)
				}
			}
		case <-ticker.C:
		case <-r.closeCh:
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.DialTimeout)*time.Second)
			if _, err := r.etcdCli.Delete(ctx, r.info.buildKey()); err != nil {
				log.Error("etcd 注销失败: %v", err)
			}
			if _, err := r.etcdCli.Revoke(ctx, r.leaseID); err != nil {
				log.Error("etcd 租约撤销失败: %v", err)
			}
			cancel()
			_ = r.etcdCli.Close()
			log.Info("关闭租约续期")
			return
		}
	}
}

func (r *Register) Close() {
	if r.closeCh != nil {
		r.closeCh <- struct{}{}
	}
}
